package workerpool

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper"
	"hyperv-facade/helper/disk"
	"hyperv-facade/helper/virtualmachine"
	"strings"
)

type VirtualMachineDeployer struct {
	DeployID  string
	Parameter DeployParameter

	api   *helper.API
	newVM *virtualmachine.VirtualMachine
}

type DeployParameter struct {
	Name           string `json:"name" valid:"Required"`
	Generation     int    `json:"generation,omitempty"`
	MemoryMB       uint64 `json:"memoryMB" valid:"Required"`
	DynamicMemory  bool   `json:"dynamicMemory,omitempty"`
	ProcessorCount uint64 `json:"processorCount" valid:"Required"`
	Notes          string `json:"notes,omitempty"`
	// VhdPath 挂载已有磁盘
	VhdPath string `json:"vhdPath,omitempty"`
	// NewDisk 先创建系统盘再挂载，与VhdPath互斥
	NewDisk *NewDisk `json:"newDisk,omitempty"`
	PowerOn *bool    `json:"powerOn,omitempty"`
}

type NewDisk struct {
	Path       string `json:"path"`
	Type       string `json:"type,omitempty"`
	Size       string `json:"size,omitempty"`
	ParentPath string `json:"parentPath,omitempty"`
}

func NewVirtualMachineDeployer(api *helper.API) *VirtualMachineDeployer {
	return &VirtualMachineDeployer{
		api: api,
	}
}

func (d *VirtualMachineDeployer) Deploy(ctx context.Context) error {
	p := d.Parameter
	vhdPath := p.VhdPath
	if p.NewDisk != nil {
		info, err := disk.Create(ctx, d.api, disk.CreateSpec{
			Path:       p.NewDisk.Path,
			Type:       p.NewDisk.Type,
			Size:       p.NewDisk.Size,
			ParentPath: p.NewDisk.ParentPath,
		})
		if err != nil {
			logging.L().Error(fmt.Sprintf("虚拟机[%s]系统盘创建失败", p.Name), err)
			return err
		}
		vhdPath = info.Path
	}

	vm, err := virtualmachine.Create(ctx, d.api, virtualmachine.CreateSpec{
		Name:           p.Name,
		Generation:     p.Generation,
		MemoryMB:       p.MemoryMB,
		DynamicMemory:  p.DynamicMemory,
		ProcessorCount: p.ProcessorCount,
		Notes:          p.Notes,
		VhdPath:        vhdPath,
	})
	if vm != nil {
		d.newVM = vm
	}
	if err != nil {
		logging.L().Error("虚拟机创建失败", err)
		d.rollBack(ctx)
		return err
	}

	if p.PowerOn != nil && *p.PowerOn {
		sub, err := vm.Start(ctx)
		if err == nil {
			_, err = d.api.Tracker.Run(ctx, sub, 0)
		}
		if err != nil {
			// 创建已成功，开机失败不回滚
			logging.L().Error(fmt.Sprintf("虚拟机[%s]开机失败", p.Name), err)
			return err
		}
	}
	return nil
}

// Verify 返回参数错误，为空表示通过
func (d *VirtualMachineDeployer) Verify() []string {
	var msg []string
	p := d.Parameter
	if strings.TrimSpace(p.Name) == "" {
		msg = append(msg, "虚拟机名称不能为空")
	}
	if p.Generation != 0 && p.Generation != 1 && p.Generation != 2 {
		msg = append(msg, fmt.Sprintf("不支持的虚拟机代数: %d", p.Generation))
	}
	if p.MemoryMB < 32 || p.MemoryMB%2 != 0 {
		msg = append(msg, "内存必须是不小于32的偶数(MB)")
	}
	if p.ProcessorCount == 0 {
		msg = append(msg, "处理器数量不能为0")
	}
	if p.NewDisk != nil {
		if p.VhdPath != "" {
			msg = append(msg, "vhdPath与newDisk不能同时设置")
		}
		if disk.FormatOfPath(p.NewDisk.Path) == "" {
			msg = append(msg, "磁盘文件扩展名必须是.vhd或.vhdx")
		}
	}
	return msg
}

func (d *VirtualMachineDeployer) NewMachineID() string {
	if d.newVM == nil {
		return ""
	}
	return d.newVM.ID()
}

func (d *VirtualMachineDeployer) NewMachine() *virtualmachine.VirtualMachine {
	return d.newVM
}

func (d *VirtualMachineDeployer) rollBack(ctx context.Context) {
	if d.newVM == nil {
		return
	}
	logging.L().Debugf("回滚删除创建的虚拟机：%s(%s)", d.newVM.Name(), d.newVM.ID())
	if err := d.newVM.Delete(ctx); err != nil {
		logging.L().Errorf("回滚删除创建的虚拟机：%s(%s)发生错误: %v", d.newVM.Name(), d.newVM.ID(), err)
		return
	}
	d.newVM = nil
}
