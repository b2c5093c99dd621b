package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv/protocol"
	"net/http"
)

// QuerySwitches
// @Summary      虚拟交换机查询
// @Tags         网络
// @Accept       json
// @Produce      json
// @Success      200  {object}  e.Response{data=[]network.Switch}
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/switches [get]
func QuerySwitches(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	switches, err := hv.QuerySwitches(c)
	if err == nil && len(switches) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, switches, err)
}

// GetSwitch
// @Summary      虚拟交换机详情
// @Tags         网络
// @Produce      json
// @Param        id   path      string  true  "交换机名称或ID"
// @Success      200  {object}  e.Response{data=network.Switch}
// @Failure      404  {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/switches/{id} [get]
func GetSwitch(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.GetSwitch(c, c.Param("id"))
	response(&r, s, err)
}

// CreateSwitch
// @Summary      创建虚拟交换机
// @Description  type为External时需要netAdapter，未指定type时创建Private交换机
// @Tags         网络
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.SwitchReq  true  "交换机参数"
// @Success      200  {object}  e.Response{data=network.Switch}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/switches [post]
func CreateSwitch(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.SwitchReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.CreateSwitch(c, p)
	response(&r, s, err)
}

// UpdateSwitch
// @Summary      修改虚拟交换机
// @Tags         网络
// @Accept       json
// @Produce      json
// @Param        id   path      string                    true  "交换机名称或ID"
// @Param        c    body      protocol.SwitchUpdateReq  true  "名称与备注"
// @Success      200  {object}  e.Response{data=network.Switch}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/switches/{id} [put]
func UpdateSwitch(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.SwitchUpdateReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	s, err := hv.UpdateSwitch(c, c.Param("id"), p)
	response(&r, s, err)
}

// DeleteSwitch
// @Summary      删除虚拟交换机
// @Tags         网络
// @Produce      json
// @Param        id   path      string  true  "交换机名称或ID"
// @Success      200  {object}  e.Response
// @Failure      404  {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/switches/{id} [delete]
func DeleteSwitch(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	err := hv.DeleteSwitch(c, c.Param("id"))
	response(&r, nil, err)
}
