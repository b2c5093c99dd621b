package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/config"
	"hyperv-facade/hyperv/cache"
	"net/http"
)

type CleanCacheKey struct {
	Keys *[]string `json:"keys"`
}

// CleanCache
// @Summary      清除缓存
// @Description  清除当前主机的缓存数据
// @Tags         缓存
// @Accept       json
// @Produce      json
// @Param        c    body      CleanCacheKey  false  "需要清除的缓存Key，空为全部"
// @Success      200  {object}  e.Response
// @Failure      400  {string}  json  "{"code":"400x","message":"失败"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/caches [delete]
func CleanCache(c *gin.Context) {
	r := e.Gin{C: c}
	p := CleanCacheKey{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	if p.Keys == nil {
		hv.Cache.CleanAll()
		r.ResponseOk(http.StatusOK, e.Success, nil)
		return
	}
	keys := make([]string, 0, len(*p.Keys))
	for _, k := range *p.Keys {
		if k == cache.RefreshTicker {
			hv.StopTicker()
			continue
		}
		keys = append(keys, k)
	}
	hv.Cache.Clean(keys...)
	r.ResponseOk(http.StatusOK, e.Success, nil)
}

// CreateCache
// @Summary      创建缓存
// @Description  后台加载虚拟机、交换机、GPU、直通设备、节点与组，并启动刷新定时器
// @Tags         缓存
// @Accept       json
// @Produce      json
// @Success      202  {object}  e.Response
// @Failure      400  {string}  json  "{"code":"4002","message":"未开启配置"}"
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/caches [post]
func CreateCache(c *gin.Context) {
	r := e.Gin{C: c}
	if !config.G.Hyperv.Cache.Enable {
		r.ResponseOk(http.StatusBadRequest, e.NotEnabled, nil)
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	go hv.CreateCache()
	r.ResponseOk(http.StatusAccepted, e.Accepted, nil)
}
