package v1

import (
	"hyperv-facade/api/e"
	"hyperv-facade/api/security"
	"hyperv-facade/app/logging"
	"hyperv-facade/hyperv"
	"net/http"
)

// currentHyperV 取当前令牌对应的主机连接，失败时已写入响应
func currentHyperV(r *e.Gin) *hyperv.HyperV {
	auth := security.GetCurrentAuth(r.C)
	hv, err := hyperv.Get(auth)
	if err != nil {
		logging.L().Errorf("获取主机[%s]连接失败: %v", auth.Address, err)
		r.ResponseFail(err)
		return nil
	}
	return hv
}

// bindReq 解析并校验请求参数，失败时已写入响应
func bindReq(r *e.Gin, p interface{}) bool {
	err := r.C.ShouldBind(p)
	if err != nil {
		logging.L().Error("解析请求参数出错: ", err)
		r.ResponseError(http.StatusBadRequest, e.BadRequest, nil)
		return false
	}

	errors := e.ValidReqParam(p)
	if len(errors) > 0 {
		r.ResponseErrors(http.StatusBadRequest, errors, nil)
		return false
	}
	return true
}

func response(r *e.Gin, data interface{}, err error) {
	if err != nil {
		r.ResponseFail(err)
		return
	}
	r.ResponseOk(http.StatusOK, e.Success, data)
}
