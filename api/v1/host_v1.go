package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv/protocol"
	"net/http"
)

// GetHost
// @Summary      宿主机信息
// @Description  宿主机处理器、内存、虚拟机状态统计、GPU分区余量与所在集群
// @Tags         基础设施
// @Accept       json
// @Produce      json
// @Success      200  {object}  e.Response{data=protocol.HostInfo}
// @Failure      401  {string}  json  "{"code":"401x","message":"失败"}"
// @Failure      500  {string}  json  "{"code":"500x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/host [get]
func GetHost(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	host, err := hv.GetHost(c)
	response(&r, host, err)
}

// QueryResourcePools
// @Summary      资源池查询
// @Tags         基础设施
// @Produce      json
// @Success      200  {object}  e.Response{data=[]resourcepool.Pool}
// @Security     ApiKeyAuth
// @Router       /v1/host/pools [get]
func QueryResourcePools(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	pools, err := hv.QueryResourcePools(c)
	response(&r, pools, err)
}

// QueryGpus
// @Summary      GPU查询
// @Tags         GPU
// @Produce      json
// @Success      200  {object}  e.Response{data=[]gpu.GPU}
// @Security     ApiKeyAuth
// @Router       /v1/gpus [get]
func QueryGpus(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	gpus, err := hv.QueryGpus(c)
	if err == nil && len(gpus) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, gpus, err)
}

// QueryPartitionableGpus
// @Summary      可分区GPU查询
// @Tags         GPU
// @Produce      json
// @Success      200  {object}  e.Response{data=[]gpu.GPU}
// @Security     ApiKeyAuth
// @Router       /v1/gpus/partitionable [get]
func QueryPartitionableGpus(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	gpus, err := hv.QueryPartitionableGpus(c)
	if err == nil && len(gpus) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, gpus, err)
}

// QueryDevices
// @Summary      直通设备查询
// @Description  主机上可分配(DDA)的PCI设备
// @Tags         DDA
// @Produce      json
// @Success      200  {object}  e.Response{data=[]gpu.Device}
// @Security     ApiKeyAuth
// @Router       /v1/dda/devices [get]
func QueryDevices(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	devices, err := hv.QueryDevices(c)
	if err == nil && len(devices) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, devices, err)
}

// DismountDevice
// @Summary      从主机卸载设备
// @Description  卸载后设备可分配给虚拟机
// @Tags         DDA
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.DeviceReq  true  "设备位置路径"
// @Success      200  {object}  e.Response{data=gpu.Device}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Failure      409  {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/dda/dismount [post]
func DismountDevice(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.DeviceReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	device, err := hv.DismountDevice(c, p.LocationPath)
	response(&r, device, err)
}

// MountDevice
// @Summary      设备挂回主机
// @Tags         DDA
// @Accept       json
// @Produce      json
// @Param        c    body      protocol.DeviceReq  true  "设备位置路径"
// @Success      200  {object}  e.Response{data=gpu.Device}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Failure      409  {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/dda/mount [post]
func MountDevice(c *gin.Context) {
	r := e.Gin{C: c}
	p := protocol.DeviceReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	device, err := hv.MountDevice(c, p.LocationPath)
	response(&r, device, err)
}
