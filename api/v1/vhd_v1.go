package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv/protocol"
)

type DifferencingReq struct {
	Path       string `json:"path" valid:"Required"`
	ParentPath string `json:"parentPath" valid:"Required"`
}

// CreateVhd
// @Summary      创建虚拟磁盘
// @Description  扩展名决定格式(.vhd/.vhdx)，type为Fixed、Dynamic或Differencing
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.VhdReq  true  "磁盘参数"
// @Success      200  {object}  e.Response{data=disk.Info}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/vhds [post]
func CreateVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.VhdReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.CreateVhd(c, p)
	response(&r, info, err)
}

// CreateDifferencingVhd
// @Summary      创建差异磁盘
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      v1.DifferencingReq  true  "磁盘与父磁盘路径"
// @Success      200  {object}  e.Response{data=disk.Info}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/vhds/differencing [post]
func CreateDifferencingVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := DifferencingReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.CreateDifferencingVhd(c, p.Path, p.ParentPath)
	response(&r, info, err)
}

// GetVhd
// @Summary      虚拟磁盘信息
// @Tags         存储
// @Produce      json
// @Param        path  query     string  true  "磁盘路径"
// @Success      200   {object}  e.Response{data=disk.Info}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/vhds [get]
func GetVhd(c *gin.Context) {
	r := e.Gin{C: c}
	q := PathQuery{}
	if !bindReq(&r, &q) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.GetVhd(c, q.Path)
	response(&r, info, err)
}

// ResizeVhd
// @Summary      扩容虚拟磁盘
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.VhdResizeReq  true  "磁盘路径与新大小"
// @Success      200  {object}  e.Response{data=disk.Info}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/vhds/resize [post]
func ResizeVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.VhdResizeReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.ResizeVhd(c, p)
	response(&r, info, err)
}

// CompactVhd
// @Summary      压缩虚拟磁盘
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.PathReq  true  "磁盘路径"
// @Success      200  {object}  e.Response{data=disk.Info}
// @Security     ApiKeyAuth
// @Router       /v1/vhds/compact [post]
func CompactVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.PathReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	info, err := hv.CompactVhd(c, p.Path)
	response(&r, info, err)
}

// MountVhd
// @Summary      在主机上挂载虚拟磁盘
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.PathReq  true  "磁盘路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/vhds/mount [post]
func MountVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.PathReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.MountVhd(c, p.Path))
}

// DismountVhd
// @Summary      从主机卸载虚拟磁盘
// @Tags         存储
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.PathReq  true  "磁盘路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/vhds/dismount [post]
func DismountVhd(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.PathReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.DismountVhd(c, p.Path))
}
