package gpu

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/resourcepool"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hostctl"
)

const (
	deviceClass = "Msvm_AssignableDevice"
	pciClass    = "Msvm_PciExpressSettingData"
)

type DeviceStatus int

const (
	// Mounted 设备仍由主机使用
	Mounted DeviceStatus = iota
	Available
	Assigned
	NotCompatible
	Error
)

var deviceStatusNames = []string{"Mounted", "Available", "Assigned", "NotCompatible", "Error"}

func (s DeviceStatus) String() string {
	return deviceStatusNames[s]
}

func (s DeviceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Device 可直通设备，MMIO单位为MB
type Device struct {
	LocationPath string       `json:"locationPath"`
	InstanceID   string       `json:"instanceId"`
	Name         string       `json:"name"`
	ClassName    string       `json:"className"`
	Vendor       string       `json:"vendor"`
	Dismounted   bool         `json:"dismounted"`
	AssignedVM   string       `json:"assignedVm,omitempty"`
	MmioLowMB    uint64       `json:"mmioLowMB"`
	MmioHighMB   uint64       `json:"mmioHighMB"`
	Status       DeviceStatus `json:"status"`
}

func toDevice(o *hostctl.Object) Device {
	d := Device{
		LocationPath: o.String("LocationPath"),
		InstanceID:   o.String("DeviceInstancePath"),
		Name:         o.String("ElementName"),
		ClassName:    o.String("ClassName"),
		Vendor:       o.String("Vendor"),
		Dismounted:   o.Bool("Dismounted"),
		AssignedVM:   o.String("AssignedVM"),
		MmioLowMB:    o.Uint64("MmioSpaceRequired"),
		MmioHighMB:   o.Uint64("MmioSpaceRequiredHigh"),
	}
	switch {
	case !d.Dismounted:
		d.Status = Mounted
	case d.AssignedVM != "":
		d.Status = Assigned
	case o.Uint16("StatusCode") == 3:
		d.Status = NotCompatible
	case o.Uint16("StatusCode") == 4:
		d.Status = Error
	default:
		d.Status = Available
	}
	return d
}

func Devices(ctx context.Context, api *helper.API) ([]Device, error) {
	logging.L().Debug("查询可直通设备")
	objs, err := handle.QueryAll(ctx, api.Host, "SELECT * FROM "+deviceClass)
	if err != nil {
		return nil, err
	}
	ret := make([]Device, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, toDevice(o))
	}
	return ret, nil
}

func GetDevice(ctx context.Context, api *helper.API, locationPath string) (*Device, error) {
	if locationPath == "" {
		return nil, errs.Newf(errs.InvalidParameter, "get device", "设备位置路径不能为空")
	}
	q := fmt.Sprintf("SELECT * FROM %s WHERE LocationPath = %s", deviceClass, utils.Quote(locationPath))
	o, err := handle.QueryFirst(ctx, api.Host, q)
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.NotFound, "get device", "设备[%s]不存在", locationPath)
		}
		return nil, err
	}
	d := toDevice(o)
	return &d, nil
}

// Dismount 从主机卸载设备，之后才能分配给虚拟机
func Dismount(ctx context.Context, api *helper.API, locationPath string) error {
	d, err := GetDevice(ctx, api, locationPath)
	if err != nil {
		return err
	}
	if d.Status != Mounted {
		return errs.Newf(errs.InvalidState, "dismount device", "设备[%s]已从主机卸载", d.Name)
	}
	logging.L().Info(fmt.Sprintf("从主机卸载设备[%s]", d.Name))
	_, err = api.Call(ctx, helper.AssignableDeviceService, "DismountAssignableDevice", hostctl.Params{"LocationPath": locationPath})
	return err
}

// Mount 将设备还给主机，设备不能仍分配给虚拟机
func Mount(ctx context.Context, api *helper.API, locationPath string) error {
	d, err := GetDevice(ctx, api, locationPath)
	if err != nil {
		return err
	}
	switch d.Status {
	case Mounted:
		return errs.Newf(errs.InvalidState, "mount device", "设备[%s]已挂载到主机", d.Name)
	case Assigned:
		return errs.Newf(errs.InvalidState, "mount device", "设备[%s]仍分配给虚拟机[%s]", d.Name, d.AssignedVM)
	}
	logging.L().Info(fmt.Sprintf("设备[%s]挂载回主机", d.Name))
	_, err = api.Call(ctx, helper.AssignableDeviceService, "MountAssignableDevice", hostctl.Params{"LocationPath": locationPath})
	return err
}

// Mmio 虚拟机的MMIO配置，单位MB
type Mmio struct {
	GuestControlledCache bool   `json:"guestControlledCache"`
	LowMB                uint64 `json:"lowMB"`
	HighMB               uint64 `json:"highMB"`
}

// Covers MMIO已配置且不小于设备需要的空间
func (m *Mmio) Covers(d *Device) bool {
	return m.GuestControlledCache && m.LowMB >= d.MmioLowMB && m.HighMB >= d.MmioHighMB
}

func GetMmio(ctx context.Context, vm *virtualmachine.VirtualMachine) (*Mmio, error) {
	s, err := vm.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return &Mmio{
		GuestControlledCache: s.Bool("GuestControlledCacheTypes"),
		LowMB:                s.Uint64("LowMmioGapSize"),
		HighMB:               s.Uint64("HighMmioGapSize"),
	}, nil
}

func toMB(b uint64) uint64 {
	return (b + utils.MB - 1) / utils.MB
}

// ConfigureMmio 设置MMIO空间，参数单位为字节，按MB向上取整
func ConfigureMmio(ctx context.Context, vm *virtualmachine.VirtualMachine, lowBytes, highBytes uint64) error {
	if lowBytes == 0 || highBytes == 0 {
		return errs.Newf(errs.InvalidParameter, "configure mmio", "MMIO空间不能为0")
	}
	if vm.Status().State != virtualmachine.Off {
		return errs.Newf(errs.InvalidState, "configure mmio", "虚拟机[%s]当前状态为%s，需要先关机", vm.Name(), vm.Status())
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return err
	}
	m := &hostctl.Object{Path: s.Path, Class: s.Class, Props: hostctl.Params{}}
	m.Set("GuestControlledCacheTypes", true).
		Set("LowMmioGapSize", toMB(lowBytes)).
		Set("HighMmioGapSize", toMB(highBytes))
	logging.L().Info(fmt.Sprintf("虚拟机[%s]配置MMIO: low=%s high=%s", vm.Name(), utils.HumanSize(lowBytes), utils.HumanSize(highBytes)))
	_, err = vm.API().Call(ctx, helper.ManagementService, "ModifySystemSettings", hostctl.Params{"SystemSettings": m})
	return err
}

// AddDevice 分配直通设备。设备未从主机卸载时返回 PermissionDenied，不会自动卸载
func AddDevice(ctx context.Context, vm *virtualmachine.VirtualMachine, locationPath string) (string, error) {
	api := vm.API()
	d, err := GetDevice(ctx, api, locationPath)
	if err != nil {
		return "", err
	}
	switch d.Status {
	case Mounted:
		return "", errs.Newf(errs.PermissionDenied, "add device", "设备[%s]仍由主机使用，需要先卸载", d.Name)
	case Assigned:
		return "", errs.Newf(errs.InvalidState, "add device", "设备[%s]已分配给虚拟机[%s]", d.Name, d.AssignedVM)
	case NotCompatible, Error:
		return "", errs.Newf(errs.InvalidParameter, "add device", "设备[%s]状态为%s，不能直通", d.Name, d.Status)
	}
	mmio, err := GetMmio(ctx, vm)
	if err != nil {
		return "", err
	}
	if !mmio.Covers(d) {
		return "", errs.Newf(errs.MmioNotConfigured, "add device", "虚拟机[%s]的MMIO空间(%d/%dMB)不满足设备[%s]的需要(%d/%dMB)",
			vm.Name(), mmio.LowMB, mmio.HighMB, d.Name, d.MmioLowMB, d.MmioHighMB)
	}
	if vm.Status().State != virtualmachine.Off {
		return "", errs.Newf(errs.InvalidState, "add device", "虚拟机[%s]当前状态为%s，需要先关机", vm.Name(), vm.Status())
	}
	s, err := vm.Settings(ctx)
	if err != nil {
		return "", err
	}
	logging.L().Info(fmt.Sprintf("将设备[%s]分配给虚拟机[%s]", d.Name, vm.Name()))
	return resourcepool.AddAndWait(ctx, api, s.Path, resourcepool.SubtypePciExpress, hostctl.Params{
		"HostResource":          []string{d.LocationPath},
		"MmioSpaceReserved":     d.MmioLowMB,
		"MmioSpaceReservedHigh": d.MmioHighMB,
	})
}

// VmDevice 已分配给虚拟机的设备
type VmDevice struct {
	LocationPath string `json:"locationPath"`
	Name         string `json:"name,omitempty"`
	Path         string `json:"-"`
}

func ListVmDevices(ctx context.Context, vm *virtualmachine.VirtualMachine) ([]VmDevice, error) {
	rs, err := vm.Resources(ctx, pciClass, resourcepool.SubtypePciExpress)
	if err != nil {
		return nil, err
	}
	ret := make([]VmDevice, 0, len(rs))
	for _, r := range rs {
		d := VmDevice{LocationPath: r.String("HostResource"), Path: r.Path}
		if dev, err := GetDevice(ctx, vm.API(), d.LocationPath); err == nil {
			d.Name = dev.Name
		}
		ret = append(ret, d)
	}
	return ret, nil
}

func RemoveDevice(ctx context.Context, vm *virtualmachine.VirtualMachine, locationPath string) error {
	ds, err := ListVmDevices(ctx, vm)
	if err != nil {
		return err
	}
	for _, d := range ds {
		if d.LocationPath == locationPath {
			logging.L().Info(fmt.Sprintf("从虚拟机[%s]移除设备[%s]", vm.Name(), locationPath))
			return resourcepool.Remove(ctx, vm.API(), d.Path)
		}
	}
	return errs.Newf(errs.NotFound, "remove device", "虚拟机[%s]上没有设备[%s]", vm.Name(), locationPath)
}
