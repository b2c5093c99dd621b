package virtualmachine

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/resourcepool"
	"hyperv-facade/hostctl"
	"strings"
)

const (
	driveClass   = "Msvm_ResourceAllocationSettingData"
	storageClass = "Msvm_StorageAllocationSettingData"
)

type Disk struct {
	Path      string `json:"path"`
	DrivePath string `json:"drivePath,omitempty"`
	Subtype   string `json:"subtype"`
}

// Disks 已挂载的虚拟硬盘
func (vm *VirtualMachine) Disks(ctx context.Context) ([]Disk, error) {
	return vm.storage(ctx, resourcepool.SubtypeVirtualDisk)
}

// Dvds 已插入的ISO
func (vm *VirtualMachine) Dvds(ctx context.Context) ([]Disk, error) {
	return vm.storage(ctx, resourcepool.SubtypeVirtualDvd)
}

func (vm *VirtualMachine) storage(ctx context.Context, subtype string) ([]Disk, error) {
	rs, err := vm.Resources(ctx, storageClass, subtype)
	if err != nil {
		return nil, err
	}
	ret := make([]Disk, 0, len(rs))
	for _, r := range rs {
		ret = append(ret, Disk{Path: r.String("HostResource"), DrivePath: r.String("Parent"), Subtype: subtype})
	}
	return ret, nil
}

// AttachDisk 添加磁盘驱动器并挂载虚拟硬盘，两步都经过能力协商
func (vm *VirtualMachine) AttachDisk(ctx context.Context, vhdPath string) (string, error) {
	if strings.TrimSpace(vhdPath) == "" {
		return "", errs.Newf(errs.InvalidParameter, "attach disk", "磁盘路径不能为空")
	}
	disks, err := vm.Disks(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range disks {
		if strings.EqualFold(d.Path, vhdPath) {
			return "", errs.Newf(errs.InvalidState, "attach disk", "磁盘[%s]已挂载到虚拟机[%s]", vhdPath, vm.Name())
		}
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return "", err
	}
	logging.L().Debug(fmt.Sprintf("虚拟机[%s]挂载磁盘[%s]", vm.Name(), vhdPath))
	drive, err := resourcepool.AddAndWait(ctx, vm.api, s.Path, resourcepool.SubtypeDiskDrive, hostctl.Params{
		"Address": fmt.Sprint(len(disks)),
	})
	if err != nil {
		return "", err
	}
	disk, err := resourcepool.AddAndWait(ctx, vm.api, s.Path, resourcepool.SubtypeVirtualDisk, hostctl.Params{
		"Parent":       drive,
		"HostResource": []string{vhdPath},
	})
	if err != nil {
		// 磁盘挂载失败时撤掉刚加的驱动器
		if rerr := resourcepool.Remove(ctx, vm.api, drive); rerr != nil {
			logging.L().Warnf("回收磁盘驱动器[%s]失败: %v", drive, rerr)
		}
		return "", err
	}
	return disk, nil
}

// DetachDisk 卸载虚拟硬盘及其驱动器
func (vm *VirtualMachine) DetachDisk(ctx context.Context, vhdPath string) error {
	d, err := vm.find(ctx, resourcepool.SubtypeVirtualDisk, vhdPath)
	if err != nil {
		return err
	}
	logging.L().Debug(fmt.Sprintf("虚拟机[%s]卸载磁盘[%s]", vm.Name(), vhdPath))
	if parent := d.String("Parent"); parent != "" {
		if p, err := vm.api.Host.GetObject(ctx, parent); err == nil && p.Class == driveClass {
			return resourcepool.Remove(ctx, vm.api, parent)
		}
	}
	return resourcepool.Remove(ctx, vm.api, d.Path)
}

// MountIso 插入ISO，已有空闲光驱时复用
func (vm *VirtualMachine) MountIso(ctx context.Context, isoPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(isoPath), ".iso") {
		return "", errs.Newf(errs.InvalidParameter, "mount iso", "不是ISO文件: %s", isoPath)
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return "", err
	}
	drives, err := ResourcesOf(ctx, vm.api.Host, s.Path, driveClass, resourcepool.SubtypeDvdDrive)
	if err != nil {
		return "", err
	}
	dvds, err := vm.Dvds(ctx)
	if err != nil {
		return "", err
	}
	used := map[string]bool{}
	for _, d := range dvds {
		used[d.DrivePath] = true
	}
	drive := ""
	for _, d := range drives {
		if !used[d.Path] {
			drive = d.Path
			break
		}
	}
	if drive == "" {
		if drive, err = resourcepool.AddAndWait(ctx, vm.api, s.Path, resourcepool.SubtypeDvdDrive, nil); err != nil {
			return "", err
		}
	}
	logging.L().Debug(fmt.Sprintf("虚拟机[%s]插入ISO[%s]", vm.Name(), isoPath))
	return resourcepool.AddAndWait(ctx, vm.api, s.Path, resourcepool.SubtypeVirtualDvd, hostctl.Params{
		"Parent":       drive,
		"HostResource": []string{isoPath},
	})
}

// EjectIso 弹出ISO，保留光驱
func (vm *VirtualMachine) EjectIso(ctx context.Context, isoPath string) error {
	d, err := vm.find(ctx, resourcepool.SubtypeVirtualDvd, isoPath)
	if err != nil {
		return err
	}
	return resourcepool.Remove(ctx, vm.api, d.Path)
}

func (vm *VirtualMachine) find(ctx context.Context, subtype, path string) (*hostctl.Object, error) {
	rs, err := vm.Resources(ctx, storageClass, subtype)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if strings.EqualFold(r.String("HostResource"), path) {
			return r, nil
		}
	}
	return nil, errs.Newf(errs.NotFound, "find disk", "虚拟机[%s]上没有[%s]", vm.Name(), path)
}
