package e

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils/stringutils"
	"net/http"
	"runtime/debug"
)

// HandlerNotFound 未注册的路径或方法
func HandlerNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code:    NotFound,
		Message: fmt.Sprintf("接口[%s %s]不存在", c.Request.Method, c.Request.URL.Path),
	})
}

// ErrHandler 处理请求过程中的panic，统一返回5000
func ErrHandler(c *gin.Context) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logging.L().Errorf("处理请求[%s %s]时发生panic: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			Code:    SystemError,
			Message: panicMessage(r),
		})
	}()
	c.Next()
}

func panicMessage(r interface{}) string {
	switch v := r.(type) {
	case error:
		return GetMessage(v.Error())
	case string:
		return stringutils.EPTThen(GetMessage(v), GetMessage(SystemError))
	}
	return GetMessage(SystemError)
}
