package e

import (
	"hyperv-facade/helper/errs"
	"net/http"
)

type status struct {
	http int
	code string
}

var kindStatus = map[errs.Kind]status{
	errs.NotFound:                {http.StatusNotFound, NotFound},
	errs.InvalidState:            {http.StatusConflict, InvalidState},
	errs.InvalidParameter:        {http.StatusBadRequest, BadRequest},
	errs.PermissionDenied:        {http.StatusForbidden, PermissionDenied},
	errs.CapacityExceeded:        {http.StatusConflict, CapacityExceeded},
	errs.PoolNotFound:            {http.StatusUnprocessableEntity, PoolNotFound},
	errs.CapabilitiesNotFound:    {http.StatusUnprocessableEntity, CapsNotFound},
	errs.DefaultTemplateNotFound: {http.StatusUnprocessableEntity, TemplateNotFound},
	errs.MmioNotConfigured:       {http.StatusConflict, MmioNotReady},
	errs.Timeout:                 {http.StatusGatewayTimeout, Timeout},
	errs.ConnectionFailed:        {http.StatusBadGateway, ConnectFailed},
	errs.OperationFailed:         {http.StatusInternalServerError, FAILED},
}

// StatusOf 错误对应的HTTP状态与响应码，非errs.Error按OperationFailed处理
func StatusOf(err error) (int, string) {
	s := kindStatus[errs.KindOf(err)]
	return s.http, s.code
}

// CodeOf 回调及通知使用的响应码
func CodeOf(err error) string {
	if err == nil {
		return Success
	}
	_, code := StatusOf(err)
	return code
}

// ResponseFail 按错误类型响应，message为错误内容
func (g *Gin) ResponseFail(err error) {
	httpCode, code := StatusOf(err)
	g.C.JSON(httpCode, Response{
		Code:    code,
		Message: err.Error(),
	})
}
