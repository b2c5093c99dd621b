package router

import (
	"github.com/gin-gonic/gin"
	"hyperv-facade/api/e"
	"hyperv-facade/api/security"
	v1 "hyperv-facade/api/v1"
	_ "hyperv-facade/docs"
	"net/http"
)

func InitRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.NoRoute(e.HandlerNotFound)
	r.NoMethod(e.HandlerNotFound)
	r.Use(e.ErrHandler)

	r.GET("/", Index)
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "on"})
	})
	r.POST("/api/token", security.GetToken)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(security.Verify())
	registerV1(apiV1)
	return r
}

func registerV1(apiV1 *gin.RouterGroup) {
	// 集群
	apiV1.GET("/cluster", v1.GetCluster)
	apiV1.GET("/cluster/connect/:name", v1.ConnectCluster)
	apiV1.GET("/cluster/nodes", v1.QueryNodes)
	apiV1.GET("/cluster/nodes/:name", v1.GetNode)
	apiV1.POST("/cluster/nodes/:name/pause", v1.PauseNode)
	apiV1.POST("/cluster/nodes/:name/resume", v1.ResumeNode)
	apiV1.GET("/cluster/groups", v1.QueryGroups)
	apiV1.GET("/cluster/groups/:name", v1.GetGroup)
	apiV1.POST("/cluster/groups/:name/online", v1.OnlineGroup)
	apiV1.POST("/cluster/groups/:name/offline", v1.OfflineGroup)
	apiV1.POST("/cluster/groups/:name/move/:node", v1.MoveGroup)
	apiV1.GET("/cluster/resources", v1.QueryResources)
	apiV1.GET("/cluster/resources/:name", v1.GetResource)
	apiV1.POST("/cluster/resources/:name/online", v1.OnlineResource)
	apiV1.POST("/cluster/resources/:name/offline", v1.OfflineResource)
	apiV1.GET("/cluster/csv", v1.QuerySharedVolumes)
	apiV1.GET("/cluster/csv/check_path", v1.CheckSharedVolumePath)
	apiV1.POST("/cluster/csv/:name/maintenance", v1.SetSharedVolumeMaintenance)

	// 主机
	apiV1.GET("/host", v1.GetHost)
	apiV1.GET("/host/pools", v1.QueryResourcePools)
	apiV1.GET("/gpus", v1.QueryGpus)
	apiV1.GET("/gpus/partitionable", v1.QueryPartitionableGpus)
	apiV1.GET("/dda/devices", v1.QueryDevices)
	apiV1.POST("/dda/dismount", v1.DismountDevice)
	apiV1.POST("/dda/mount", v1.MountDevice)

	// 虚拟机
	apiV1.GET("/virtual_machines", v1.QueryVirtualMachines)
	apiV1.POST("/virtual_machines", v1.CreateVirtualMachine)
	apiV1.DELETE("/virtual_machines", v1.DeleteVirtualMachines)
	apiV1.GET("/virtual_machines/:name", v1.GetVirtualMachine)
	apiV1.DELETE("/virtual_machines/:name", v1.DeleteVirtualMachine)
	apiV1.POST("/virtual_machines/power_on", v1.VirtualMachinePowerOn)
	apiV1.POST("/virtual_machines/power_off", v1.VirtualMachinePowerOff)
	apiV1.POST("/virtual_machines/shutdown", v1.VirtualMachineShutdown)
	apiV1.POST("/virtual_machines/pause", v1.VirtualMachinePause)
	apiV1.POST("/virtual_machines/resume", v1.VirtualMachineResume)
	apiV1.POST("/virtual_machines/save", v1.VirtualMachineSave)
	apiV1.POST("/virtual_machines/reset", v1.VirtualMachineReset)
	apiV1.POST("/virtual_machines/hibernate", v1.VirtualMachineHibernate)
	apiV1.POST("/virtual_machines/rename", v1.VirtualMachineRename)
	apiV1.POST("/virtual_machines/export", v1.VirtualMachineExport)
	apiV1.POST("/virtual_machines/reconfigure", v1.ModifyVirtualMachineConfigure)
	apiV1.POST("/virtual_machines/disks/attach", v1.AttachVirtualMachineDisk)
	apiV1.POST("/virtual_machines/disks/detach", v1.DetachVirtualMachineDisk)
	apiV1.POST("/virtual_machines/dvd/mount", v1.MountVirtualMachineIso)
	apiV1.POST("/virtual_machines/dvd/eject", v1.EjectVirtualMachineIso)

	// 检查点
	apiV1.GET("/virtual_machines/:name/snapshots", v1.QuerySnapshots)
	apiV1.GET("/virtual_machines/:name/snapshots/:snapshot", v1.GetSnapshot)
	apiV1.DELETE("/virtual_machines/:name/snapshots/:snapshot", v1.DeleteSnapshot)
	apiV1.POST("/virtual_machines/snapshots", v1.CreateSnapshot)
	apiV1.POST("/virtual_machines/snapshots/rename", v1.RenameSnapshot)
	apiV1.POST("/virtual_machines/snapshots/apply", v1.ApplySnapshot)

	// 虚拟机GPU与直通设备
	apiV1.GET("/virtual_machines/:name/gpu/partitions", v1.QueryPartitions)
	apiV1.DELETE("/virtual_machines/:name/gpu/partitions", v1.RemovePartition)
	apiV1.POST("/virtual_machines/gpu/partitions", v1.AddPartition)
	apiV1.GET("/virtual_machines/:name/gpu/mmio", v1.GetMmio)
	apiV1.POST("/virtual_machines/gpu/mmio", v1.ConfigureMmio)
	apiV1.GET("/virtual_machines/:name/dda", v1.QueryVmDevices)
	apiV1.POST("/virtual_machines/dda/assign", v1.AssignDevice)
	apiV1.POST("/virtual_machines/dda/remove", v1.RemoveDevice)

	// 交换机
	apiV1.GET("/switches", v1.QuerySwitches)
	apiV1.POST("/switches", v1.CreateSwitch)
	apiV1.GET("/switches/:id", v1.GetSwitch)
	apiV1.PUT("/switches/:id", v1.UpdateSwitch)
	apiV1.DELETE("/switches/:id", v1.DeleteSwitch)

	// 虚拟磁盘
	apiV1.GET("/vhds", v1.GetVhd)
	apiV1.POST("/vhds", v1.CreateVhd)
	apiV1.POST("/vhds/differencing", v1.CreateDifferencingVhd)
	apiV1.POST("/vhds/resize", v1.ResizeVhd)
	apiV1.POST("/vhds/compact", v1.CompactVhd)
	apiV1.POST("/vhds/mount", v1.MountVhd)
	apiV1.POST("/vhds/dismount", v1.DismountVhd)

	// 缓存
	apiV1.DELETE("/caches", v1.CleanCache)
	apiV1.POST("/caches", v1.CreateCache)

	// 测试
	apiV1.POST("/test_call_back", v1.ReceiveCallBackData)
}
