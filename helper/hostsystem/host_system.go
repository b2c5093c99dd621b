package hostsystem

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/virtualmachine"
)

const (
	Type    = "Msvm_ComputerSystem"
	caption = "Hosting Computer System"
)

type HostInfo struct {
	Name                       string         `json:"name"`
	LogicalProcessors          uint32         `json:"logicalProcessors"`
	TotalMemory                uint64         `json:"totalMemory"`
	TotalMemoryHuman           string         `json:"totalMemoryHuman"`
	VmCount                    int            `json:"vmCount"`
	VmStates                   map[string]int `json:"vmStates"`
	DefaultVirtualHardDiskPath string         `json:"defaultVirtualHardDiskPath"`
	DefaultExternalDataRoot    string         `json:"defaultExternalDataRoot"`
	Driver                     string         `json:"driver"`
}

// Get 宿主机本身的信息与虚拟机数量统计
func Get(ctx context.Context, api *helper.API) (*HostInfo, error) {
	logging.L().Debug("获取宿主机信息")
	o, err := handle.QueryFirst(ctx, api.Host, fmt.Sprintf("SELECT * FROM %s WHERE Caption = '%s'", Type, caption))
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.NotFound, "get host", "宿主机信息不存在")
		}
		return nil, err
	}
	info := &HostInfo{
		Name:              o.String("ElementName"),
		LogicalProcessors: o.Uint32("NumberOfLogicalProcessors"),
		TotalMemory:       o.Uint64("TotalPhysicalMemory"),
		VmStates:          map[string]int{},
		Driver:            api.Driver,
	}
	info.TotalMemoryHuman = utils.HumanSize(info.TotalMemory)

	s, err := handle.QueryFirst(ctx, api.Host, "SELECT * FROM Msvm_VirtualSystemManagementServiceSettingData")
	if err != nil && !errs.IsKind(err, errs.NotFound) {
		return nil, err
	}
	if s != nil {
		info.DefaultVirtualHardDiskPath = s.String("DefaultVirtualHardDiskPath")
		info.DefaultExternalDataRoot = s.String("DefaultExternalDataRoot")
	}

	vms, err := virtualmachine.List(ctx, api)
	if err != nil {
		return nil, err
	}
	info.VmCount = len(vms)
	for _, vm := range vms {
		info.VmStates[vm.Status().State.String()]++
	}
	return info, nil
}
