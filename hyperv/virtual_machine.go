package hyperv

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/protocol"
	"strconv"
	"strings"
)

func briefOf(vm *virtualmachine.VirtualMachine) protocol.VirtualMachineBrief {
	st := vm.Status()
	return protocol.VirtualMachineBrief{
		ID:           vm.ID(),
		Name:         vm.Name(),
		State:        st.String(),
		StateCode:    st.Code,
		UptimeMillis: vm.UptimeMillis(),
	}
}

// QueryVirtualMachines 列表只包含状态，按名称与状态过滤
func (hv *HyperV) QueryVirtualMachines(ctx context.Context, q ...protocol.VirtualMachineQuery) ([]protocol.VirtualMachineBrief, error) {
	all := hv.Cache.GetVirtualMachines()
	if all != nil {
		logging.L().Debug("本次查询使用了缓存")
	} else {
		vms, err := virtualmachine.List(ctx, hv.Api)
		if err != nil {
			return nil, err
		}
		all = make([]protocol.VirtualMachineBrief, 0, len(vms))
		for _, vm := range vms {
			all = append(all, briefOf(vm))
		}
		hv.Cache.CacheVirtualMachines(all)
	}
	if len(q) == 0 {
		return all, nil
	}
	return filterVirtualMachines(all, q[0]), nil
}

func filterVirtualMachines(all []protocol.VirtualMachineBrief, q protocol.VirtualMachineQuery) []protocol.VirtualMachineBrief {
	ret := make([]protocol.VirtualMachineBrief, 0, len(all))
	for _, b := range all {
		if q.State != "" && !strings.EqualFold(b.State, q.State) {
			continue
		}
		if len(q.Names) > 0 && !containsFold(q.Names, b.Name) {
			continue
		}
		ret = append(ret, b)
	}
	return ret
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// GetVirtualMachine 读取状态、设置、内存、处理器与存储
func (hv *HyperV) GetVirtualMachine(ctx context.Context, nameOrID string) (*protocol.VirtualMachineInfo, error) {
	vm, err := virtualmachine.Get(ctx, hv.Api, nameOrID)
	if err != nil {
		return nil, err
	}
	return hv.buildVirtualMachineInfo(ctx, vm)
}

func (hv *HyperV) buildVirtualMachineInfo(ctx context.Context, vm *virtualmachine.VirtualMachine) (*protocol.VirtualMachineInfo, error) {
	b := briefOf(vm)
	info := &protocol.VirtualMachineInfo{
		ID:           b.ID,
		Name:         b.Name,
		State:        b.State,
		StateCode:    b.StateCode,
		UptimeMillis: b.UptimeMillis,
		Disks:        []protocol.DiskInfo{},
		Dvds:         []protocol.DiskInfo{},
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return nil, err
	}
	info.Notes = s.String("Notes")
	info.Generation = generationOf(s.String("VirtualSystemSubType"))

	m, err := vm.Memory(ctx)
	if err != nil {
		return nil, err
	}
	info.MemoryMB, info.DynamicMemory = m.StartupMB, m.Dynamic
	if info.ProcessorCount, err = vm.ProcessorCount(ctx); err != nil {
		return nil, err
	}

	disks, err := vm.Disks(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range disks {
		info.Disks = append(info.Disks, protocol.DiskInfo{Path: d.Path, DrivePath: d.DrivePath})
	}
	dvds, err := vm.Dvds(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range dvds {
		info.Dvds = append(info.Dvds, protocol.DiskInfo{Path: d.Path, DrivePath: d.DrivePath})
	}
	return info, nil
}

// generationOf 解析"Microsoft:Hyper-V:SubType:2"
func generationOf(subType string) int {
	i := strings.LastIndex(subType, ":")
	if i < 0 {
		return 0
	}
	g, err := strconv.Atoi(subType[i+1:])
	if err != nil {
		return 0
	}
	return g
}

func (hv *HyperV) getVirtualMachine(ctx context.Context, nameOrID string) (*virtualmachine.VirtualMachine, error) {
	return virtualmachine.Get(ctx, hv.Api, nameOrID)
}

// withVirtualMachine 执行修改后清除虚拟机缓存
func (hv *HyperV) withVirtualMachine(ctx context.Context, nameOrID, action string, f func(vm *virtualmachine.VirtualMachine) error) error {
	vm, err := hv.getVirtualMachine(ctx, nameOrID)
	if err != nil {
		return err
	}
	if err = f(vm); err != nil {
		logging.L().Error(fmt.Sprintf("虚拟机[%s]%s失败", vm.Name(), action), err)
		return err
	}
	hv.Cache.Clean(cache.VirtualMachines)
	return nil
}

func (hv *HyperV) RenameVirtualMachine(ctx context.Context, nameOrID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errs.Newf(errs.InvalidParameter, "rename vm", "新名称不能为空")
	}
	return hv.withVirtualMachine(ctx, nameOrID, "重命名", func(vm *virtualmachine.VirtualMachine) error {
		if vm.Name() == newName {
			return nil
		}
		return vm.Rename(ctx, newName)
	})
}

func (hv *HyperV) ExportVirtualMachine(ctx context.Context, nameOrID, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errs.Newf(errs.InvalidParameter, "export vm", "导出目录不能为空")
	}
	return hv.withVirtualMachine(ctx, nameOrID, "导出", func(vm *virtualmachine.VirtualMachine) error {
		return vm.Export(ctx, dir)
	})
}

// ReconfigureVirtualMachine 修改内存、处理器数量与备注，内存与处理器要求虚拟机已关机
func (hv *HyperV) ReconfigureVirtualMachine(ctx context.Context, nameOrID string, p protocol.VirtualMachineConfig) error {
	return hv.withVirtualMachine(ctx, nameOrID, "修改配置", func(vm *virtualmachine.VirtualMachine) error {
		if p.MemoryMB > 0 {
			if err := vm.SetMemory(ctx, p.MemoryMB); err != nil {
				return err
			}
		}
		if p.ProcessorCount > 0 {
			if err := vm.SetProcessorCount(ctx, p.ProcessorCount); err != nil {
				return err
			}
		}
		if p.Notes != nil {
			return vm.SetNotes(ctx, *p.Notes)
		}
		return nil
	})
}

func (hv *HyperV) AttachDisk(ctx context.Context, nameOrID, vhdPath string) error {
	return hv.withVirtualMachine(ctx, nameOrID, "挂载磁盘", func(vm *virtualmachine.VirtualMachine) error {
		_, err := vm.AttachDisk(ctx, vhdPath)
		return err
	})
}

func (hv *HyperV) DetachDisk(ctx context.Context, nameOrID, vhdPath string) error {
	return hv.withVirtualMachine(ctx, nameOrID, "卸载磁盘", func(vm *virtualmachine.VirtualMachine) error {
		return vm.DetachDisk(ctx, vhdPath)
	})
}

func (hv *HyperV) MountIso(ctx context.Context, nameOrID, isoPath string) error {
	return hv.withVirtualMachine(ctx, nameOrID, "插入光盘", func(vm *virtualmachine.VirtualMachine) error {
		_, err := vm.MountIso(ctx, isoPath)
		return err
	})
}

func (hv *HyperV) EjectIso(ctx context.Context, nameOrID, isoPath string) error {
	return hv.withVirtualMachine(ctx, nameOrID, "弹出光盘", func(vm *virtualmachine.VirtualMachine) error {
		return vm.EjectIso(ctx, isoPath)
	})
}
