package v1

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv/protocol"
	"net/http"
)

type PartitionReq struct {
	ID string `json:"id" valid:"Required"`
	protocol.GpuPartitionReq
}

type MmioReq struct {
	ID string `json:"id" valid:"Required"`
	protocol.MmioReq
}

type VmDeviceReq struct {
	ID           string `json:"id" valid:"Required"`
	LocationPath string `json:"locationPath" valid:"Required"`
}

type RemovePartitionQuery struct {
	PartitionID string `form:"partitionId"`
}

// QueryPartitions
// @Summary      虚拟机GPU分区查询
// @Tags         GPU
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response{data=[]gpu.Partition}
// @Failure      404   {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/gpu/partitions [get]
func QueryPartitions(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	partitions, err := hv.QueryPartitions(c, c.Param("name"))
	if err == nil && len(partitions) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, partitions, err)
}

// AddPartition
// @Summary      添加GPU分区
// @Description  要求虚拟机已关机、已配置MMIO且GPU仍有可用分区，显存单位MB
// @Tags         GPU
// @Accept       json
// @Produce      json
// @Param        c    body      v1.PartitionReq  true  "分区参数"
// @Success      200  {object}  e.Response{data=gpu.Partition}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Failure      409  {string}  json  "{"code":"409x","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/gpu/partitions [post]
func AddPartition(c *gin.Context) {
	r := e.Gin{C: c}
	p := PartitionReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	partition, err := hv.AddPartition(c, p.ID, p.GpuPartitionReq)
	response(&r, partition, err)
}

// RemovePartition
// @Summary      移除GPU分区
// @Description  partitionId为空时移除全部分区
// @Tags         GPU
// @Produce      json
// @Param        name         path      string  true   "虚拟机名称或ID"
// @Param        partitionId  query     string  false  "分区ID"
// @Success      200          {object}  e.Response
// @Failure      404          {string}  json  "{"code":"4040","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/gpu/partitions [delete]
func RemovePartition(c *gin.Context) {
	r := e.Gin{C: c}
	q := RemovePartitionQuery{}
	if !bindReq(&r, &q) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	n, err := hv.RemovePartition(c, c.Param("name"), q.PartitionID)
	response(&r, map[string]int{"removed": n}, err)
}

// GetMmio
// @Summary      虚拟机MMIO配置
// @Tags         GPU
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response{data=gpu.Mmio}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/gpu/mmio [get]
func GetMmio(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	mmio, err := hv.GetMmio(c, c.Param("name"))
	response(&r, mmio, err)
}

// ConfigureMmio
// @Summary      配置MMIO
// @Description  大小如"3GB"、"33280MB"，同时开启写合并缓存
// @Tags         GPU
// @Accept       json
// @Produce      json
// @Param        c    body      v1.MmioReq  true  "MMIO参数"
// @Success      200  {object}  e.Response{data=gpu.Mmio}
// @Failure      400  {string}  json  "{"code":"4000","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/gpu/mmio [post]
func ConfigureMmio(c *gin.Context) {
	r := e.Gin{C: c}
	p := MmioReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	mmio, err := hv.ConfigureMmio(c, p.ID, p.MmioReq)
	response(&r, mmio, err)
}

// QueryVmDevices
// @Summary      虚拟机直通设备查询
// @Tags         DDA
// @Produce      json
// @Param        name  path      string  true  "虚拟机名称或ID"
// @Success      200   {object}  e.Response{data=[]gpu.VmDevice}
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/{name}/dda [get]
func QueryVmDevices(c *gin.Context) {
	r := e.Gin{C: c}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	devices, err := hv.QueryVmDevices(c, c.Param("name"))
	if err == nil && len(devices) == 0 {
		r.ResponseOk(http.StatusOK, e.Success, e.EmptyArray())
		return
	}
	response(&r, devices, err)
}

// AssignDevice
// @Summary      分配直通设备
// @Description  设备需先从主机卸载
// @Tags         DDA
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmDeviceReq  true  "虚拟机与设备位置路径"
// @Success      200  {object}  e.Response
// @Failure      409  {string}  json  "{"code":"4090","message":"失败"}"
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/dda/assign [post]
func AssignDevice(c *gin.Context) {
	r := e.Gin{C: c}
	p := VmDeviceReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.AssignDevice(c, p.ID, p.LocationPath))
}

// RemoveDevice
// @Summary      移除直通设备
// @Tags         DDA
// @Accept       json
// @Produce      json
// @Param        c    body      v1.VmDeviceReq  true  "虚拟机与设备位置路径"
// @Success      200  {object}  e.Response
// @Security     ApiKeyAuth
// @Router       /v1/virtual_machines/dda/remove [post]
func RemoveDevice(c *gin.Context) {
	r := e.Gin{C: c}
	p := VmDeviceReq{}
	if !bindReq(&r, &p) {
		return
	}
	hv := currentHyperV(&r)
	if hv == nil {
		return
	}
	response(&r, nil, hv.RemoveDevice(c, p.ID, p.LocationPath))
}
