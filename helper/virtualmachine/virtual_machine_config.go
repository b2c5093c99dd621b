package virtualmachine

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"strings"
)

const (
	memoryClass    = "Msvm_MemorySettingData"
	processorClass = "Msvm_ProcessorSettingData"
)

type CreateSpec struct {
	Name           string
	Generation     int
	MemoryMB       uint64
	DynamicMemory  bool
	ProcessorCount uint64
	Notes          string
	// VhdPath 非空时创建后挂载该磁盘
	VhdPath string
}

func (s *CreateSpec) validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return errs.Newf(errs.InvalidParameter, "create vm", "虚拟机名称不能为空")
	case s.Generation != 1 && s.Generation != 2:
		return errs.Newf(errs.InvalidParameter, "create vm", "不支持的虚拟机代数: %d", s.Generation)
	case s.MemoryMB < 32 || s.MemoryMB%2 != 0:
		return errs.Newf(errs.InvalidParameter, "create vm", "内存必须是不小于32的偶数(MB): %d", s.MemoryMB)
	case s.ProcessorCount == 0:
		return errs.Newf(errs.InvalidParameter, "create vm", "处理器数量不能为0")
	}
	return nil
}

// Create 定义新虚拟机并等待完成
func Create(ctx context.Context, api *helper.API, spec CreateSpec) (*VirtualMachine, error) {
	if spec.Generation == 0 {
		spec.Generation = 2
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if _, err := GetByName(ctx, api, spec.Name); err == nil {
		return nil, errs.Newf(errs.InvalidParameter, "create vm", "虚拟机[%s]已存在", spec.Name)
	} else if !errs.IsKind(err, errs.NotFound) {
		return nil, err
	}
	logging.L().Info(fmt.Sprintf("创建虚拟机[%s]", spec.Name))
	settings := hostctl.NewObject(SettingClass).
		Set("ElementName", spec.Name).
		Set("VirtualSystemSubType", fmt.Sprintf("Microsoft:Hyper-V:SubType:%d", spec.Generation)).
		Set("Notes", spec.Notes)
	resources := []*hostctl.Object{
		hostctl.NewObject(memoryClass).
			Set("VirtualQuantity", spec.MemoryMB).
			Set("DynamicMemoryEnabled", spec.DynamicMemory),
		hostctl.NewObject(processorClass).Set("VirtualQuantity", spec.ProcessorCount),
	}
	out, err := api.Call(ctx, helper.ManagementService, "DefineSystem", hostctl.Params{
		"SystemSettings":   settings,
		"ResourceSettings": resources,
	})
	if err != nil {
		logging.L().Errorf("创建虚拟机[%s]失败: %v", spec.Name, err)
		return nil, err
	}
	path := out.String("ResultingSystem")
	o, err := api.Host.GetObject(ctx, path)
	if err != nil {
		return nil, errs.FromHost("create vm", path, err)
	}
	vm := wrap(api, o)
	if spec.VhdPath != "" {
		if _, err := vm.AttachDisk(ctx, spec.VhdPath); err != nil {
			logging.L().Errorf("虚拟机[%s]已创建，挂载磁盘[%s]失败: %v", spec.Name, spec.VhdPath, err)
			return vm, err
		}
	}
	return vm, nil
}

// Delete 删除虚拟机，虚拟机必须处于关机状态
func (vm *VirtualMachine) Delete(ctx context.Context) error {
	if vm.status.State != Off {
		return errs.Newf(errs.InvalidState, "delete vm", "虚拟机[%s]当前状态为%s，只能删除已关机的虚拟机", vm.Name(), vm.status)
	}
	logging.L().Info(fmt.Sprintf("删除虚拟机[%s]", vm.Name()))
	_, err := vm.api.Call(ctx, helper.ManagementService, "DestroySystem", hostctl.Params{"AffectedSystem": vm.obj.Path})
	return err
}

func (vm *VirtualMachine) Rename(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Newf(errs.InvalidParameter, "rename vm", "虚拟机名称不能为空")
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return err
	}
	if err := vm.modifySettings(ctx, s, hostctl.Params{"ElementName": name}); err != nil {
		return err
	}
	vm.obj.Set("ElementName", name)
	return nil
}

// SetNotes 修改备注
func (vm *VirtualMachine) SetNotes(ctx context.Context, notes string) error {
	s, err := vm.Settings(ctx)
	if err != nil {
		return err
	}
	return vm.modifySettings(ctx, s, hostctl.Params{"Notes": notes})
}

func (vm *VirtualMachine) modifySettings(ctx context.Context, s *hostctl.Object, changes hostctl.Params) error {
	m := &hostctl.Object{Path: s.Path, Class: s.Class, Props: hostctl.Params{}}
	for k, v := range changes {
		m.Set(k, v)
	}
	_, err := vm.api.Call(ctx, helper.ManagementService, "ModifySystemSettings", hostctl.Params{"SystemSettings": m})
	return err
}

// Export 导出虚拟机定义到目录
func (vm *VirtualMachine) Export(ctx context.Context, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errs.Newf(errs.InvalidParameter, "export vm", "导出目录不能为空")
	}
	logging.L().Info(fmt.Sprintf("导出虚拟机[%s]到[%s]", vm.Name(), dir))
	_, err := vm.api.Call(ctx, helper.ManagementService, "ExportSystemDefinition", hostctl.Params{
		"ComputerSystem":  vm.obj.Path,
		"ExportDirectory": dir,
	})
	return err
}

type Memory struct {
	StartupMB uint64 `json:"startupMB"`
	Dynamic   bool   `json:"dynamic"`
	MinimumMB uint64 `json:"minimumMB,omitempty"`
	MaximumMB uint64 `json:"maximumMB,omitempty"`
}

func (vm *VirtualMachine) Memory(ctx context.Context) (*Memory, error) {
	m, err := vm.single(ctx, memoryClass)
	if err != nil {
		return nil, err
	}
	ret := &Memory{StartupMB: m.Uint64("VirtualQuantity"), Dynamic: m.Bool("DynamicMemoryEnabled")}
	if ret.Dynamic {
		ret.MinimumMB = m.Uint64("Reservation")
		ret.MaximumMB = m.Uint64("Limit")
	}
	return ret, nil
}

func (vm *VirtualMachine) ProcessorCount(ctx context.Context) (uint64, error) {
	p, err := vm.single(ctx, processorClass)
	if err != nil {
		return 0, err
	}
	return p.Uint64("VirtualQuantity"), nil
}

// SetMemory 修改启动内存，虚拟机需要处于关机状态
func (vm *VirtualMachine) SetMemory(ctx context.Context, mb uint64) error {
	if mb < 32 || mb%2 != 0 {
		return errs.Newf(errs.InvalidParameter, "set memory", "内存必须是不小于32的偶数(MB): %d", mb)
	}
	if vm.status.State != Off {
		return errs.Newf(errs.InvalidState, "set memory", "虚拟机[%s]当前状态为%s", vm.Name(), vm.status)
	}
	m, err := vm.single(ctx, memoryClass)
	if err != nil {
		return err
	}
	return vm.modifyResource(ctx, m, "VirtualQuantity", mb)
}

func (vm *VirtualMachine) SetProcessorCount(ctx context.Context, count uint64) error {
	if count == 0 {
		return errs.Newf(errs.InvalidParameter, "set processor", "处理器数量不能为0")
	}
	if vm.status.State != Off {
		return errs.Newf(errs.InvalidState, "set processor", "虚拟机[%s]当前状态为%s", vm.Name(), vm.status)
	}
	p, err := vm.single(ctx, processorClass)
	if err != nil {
		return err
	}
	return vm.modifyResource(ctx, p, "VirtualQuantity", count)
}

func (vm *VirtualMachine) modifyResource(ctx context.Context, rasd *hostctl.Object, prop string, value interface{}) error {
	m := &hostctl.Object{Path: rasd.Path, Class: rasd.Class, Props: hostctl.Params{}}
	m.Set(prop, value)
	_, err := vm.api.Call(ctx, helper.ManagementService, "ModifyResourceSettings", hostctl.Params{
		"ResourceSettings": []*hostctl.Object{m},
	})
	return err
}

func (vm *VirtualMachine) single(ctx context.Context, class string) (*hostctl.Object, error) {
	rs, err := vm.Resources(ctx, class, "")
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, errs.Newf(errs.NotFound, "vm resource", "虚拟机[%s]没有%s", vm.Name(), class)
	}
	return rs[0], nil
}
