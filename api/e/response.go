package e

import (
	"github.com/gin-gonic/gin"
	"strings"
)

type Gin struct {
	C *gin.Context
}

// Response 所有接口统一的响应体，code为字符串响应码
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type EmptyData struct {
}

func (g *Gin) write(httpCode int, code, message string, data interface{}) {
	g.C.JSON(httpCode, Response{Code: code, Message: message, Data: data})
}

func (g *Gin) ResponseOk(httpCode int, errCode string, data interface{}) {
	g.write(httpCode, errCode, GetMessage(errCode), data)
}

func (g *Gin) ResponseError(httpCode int, errCode string, data interface{}) {
	g.write(httpCode, errCode, GetMessage(errCode), data)
	g.C.Abort()
}

// ResponseErrors 参数校验失败，多个错误以分号连接
func (g *Gin) ResponseErrors(httpCode int, errors []ReqParamError, data interface{}) {
	msg := make([]string, 0, len(errors))
	for _, err := range errors {
		msg = append(msg, err.Message)
	}
	g.write(httpCode, BadRequest, strings.Join(msg, ";"), data)
	g.C.Abort()
}

func EmptyArray() []EmptyData {
	return []EmptyData{}
}

func EmptyObject() EmptyData {
	return EmptyData{}
}
