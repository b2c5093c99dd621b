package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/app/logging"
	"hyperv-facade/hyperv/protocol"
)

// ReceiveCallBackData
// @Summary      接收回调
// @Description  默认回调地址，只记录回调内容，用于联调
// @Tags         测试
// @Accept       json
// @Produce      json
// @Param        c  body  protocol.CallbackRes  true  "回调结果"
// @Success      200
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/test_call_back [post]
func ReceiveCallBackData(c *gin.Context) {
	r := e.Gin{C: c}
	body := protocol.CallbackRes{}
	if !bindReq(&r, &body) {
		return
	}
	if body.Code == e.Success {
		logging.L().Infof("请求[%s]回调: %s", body.RequestID, body.Message)
	} else {
		logging.L().Warnf("请求[%s]回调失败[%s]: %s", body.RequestID, body.Code, body.Message)
	}
	response(&r, nil, nil)
}
