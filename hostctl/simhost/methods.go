package simhost

import (
	"fmt"
	"github.com/google/uuid"
	"hyperv-facade/hostctl"
	"strings"
	"time"
)

// 虚拟机EnabledState
const (
	VMRunning      uint32 = 2
	VMOff          uint32 = 3
	VMShuttingDown uint32 = 4
	VMPaused       uint32 = 32768
	VMSaved        uint32 = 32769
	VMStarting     uint32 = 32770
	VMSaving       uint32 = 32773
	VMStopping     uint32 = 32774
	VMPausing      uint32 = 32776
	VMResuming     uint32 = 32777
	VMHibernated   uint32 = 32783
)

const (
	requestReset uint32 = 11

	realizedSystem   = "Microsoft:Hyper-V:System:Realized"
	realizedSnapshot = "Microsoft:Hyper-V:Snapshot:Realized"

	subtypeGpuPartition = "Microsoft:Hyper-V:Gpu Partition"
	subtypePciExpress   = "Microsoft:Hyper-V:Pci Express"
	subtypeVirtualDisk  = "Microsoft:Hyper-V:Virtual Hard Disk"

	vhdFixed        uint16 = 2
	vhdDifferencing uint16 = 4
	minVhdFileSize  uint64 = 4 * 1024 * 1024
)

var methods = map[string]methodFunc{
	"RequestStateChange":            requestStateChange,
	"InitiateShutdown":              initiateShutdown,
	"DefineSystem":                  defineSystem,
	"DestroySystem":                 destroySystem,
	"ModifySystemSettings":          modifySystemSettings,
	"AddResourceSettings":           addResourceSettings,
	"RemoveResourceSettings":        removeResourceSettings,
	"ModifyResourceSettings":        modifyResourceSettings,
	"ExportSystemDefinition":        exportSystemDefinition,
	"CreateSnapshot":                createSnapshot,
	"ApplySnapshot":                 applySnapshot,
	"DestroySnapshot":               destroySnapshot,
	"CreateVirtualHardDisk":         createVirtualHardDisk,
	"ResizeVirtualHardDisk":         resizeVirtualHardDisk,
	"CompactVirtualHardDisk":        compactVirtualHardDisk,
	"AttachVirtualHardDisk":         attachVirtualHardDisk,
	"DetachVirtualHardDisk":         detachVirtualHardDisk,
	"GetVirtualHardDiskSettingData": getVirtualHardDiskSettingData,
	"DismountAssignableDevice":      dismountAssignableDevice,
	"MountAssignableDevice":         mountAssignableDevice,
}

func setState(o *hostctl.Object, state uint32) func() {
	return func() { o.Set("EnabledState", state) }
}

func requestStateChange(h *Host, vm *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	if vm.Class != "Msvm_ComputerSystem" {
		return outcome{}, hostctl.ReturnNotSupported
	}
	current := vm.Uint32("EnabledState")
	requested := in.Uint32("RequestedState")
	var transitional uint32
	switch requested {
	case VMRunning:
		switch current {
		case VMOff, VMSaved, VMHibernated:
			transitional = VMStarting
		case VMPaused:
			transitional = VMResuming
		default:
			return outcome{}, hostctl.ReturnInvalidState
		}
	case VMOff:
		if current == VMOff {
			return outcome{}, hostctl.ReturnInvalidState
		}
		transitional = VMStopping
	case VMPaused:
		if current != VMRunning {
			return outcome{}, hostctl.ReturnInvalidState
		}
		transitional = VMPausing
	case VMSaved:
		if current != VMRunning && current != VMPaused {
			return outcome{}, hostctl.ReturnInvalidState
		}
		transitional = VMSaving
	case VMHibernated:
		if current != VMRunning {
			return outcome{}, hostctl.ReturnInvalidState
		}
		transitional = VMSaving
	case requestReset:
		if current != VMRunning {
			return outcome{}, hostctl.ReturnInvalidState
		}
		transitional, requested = VMRunning, VMRunning
	default:
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	vm.Set("EnabledState", transitional)
	return outcome{async: true, complete: setState(vm, requested)}, hostctl.ReturnCompleted
}

func initiateShutdown(h *Host, sc *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	if sc.Class != "Msvm_ShutdownComponent" {
		return outcome{}, hostctl.ReturnNotSupported
	}
	vm := h.vmByGuid(sc.String("SystemName"))
	if vm == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if vm.Uint32("EnabledState") != VMRunning {
		return outcome{}, hostctl.ReturnInvalidState
	}
	vm.Set("EnabledState", VMShuttingDown)
	return outcome{async: true, complete: setState(vm, VMOff)}, hostctl.ReturnCompleted
}

func (h *Host) vmByGuid(guid string) *hostctl.Object {
	return h.first("Msvm_ComputerSystem", eq("Name", guid), eq("Caption", "Virtual Machine"))
}

func (h *Host) settingsOf(vm *hostctl.Object) *hostctl.Object {
	paths := h.associators(vm.Path, "Msvm_SettingsDefineState", "Msvm_VirtualSystemSettingData")
	if len(paths) == 0 {
		return nil
	}
	return h.objects[paths[0]]
}

func (h *Host) vmOfSettings(vssd *hostctl.Object) *hostctl.Object {
	return h.vmByGuid(vssd.String("VirtualSystemIdentifier"))
}

func defineSystem(h *Host, svc *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	settings := in.Object("SystemSettings")
	if settings == nil || settings.String("ElementName") == "" {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	switch svc.Class {
	case "Msvm_VirtualSystemManagementService":
		vm := h.defineVM(settings, in.Objects("ResourceSettings"))
		return outcome{out: hostctl.Params{"ResultingSystem": vm.Path}, async: true}, hostctl.ReturnCompleted
	case "Msvm_VirtualEthernetSwitchManagementService":
		typ := settings.String("SwitchType")
		if typ == "" {
			typ = "Private"
		}
		if strings.EqualFold(typ, "External") && settings.String("NetAdapter") == "" {
			return outcome{}, hostctl.ReturnInvalidParameter
		}
		sw := h.defineSwitch(settings.String("ElementName"), typ, settings.String("NetAdapter"), settings.String("Notes"))
		return outcome{out: hostctl.Params{"ResultingSystem": sw.Path}}, hostctl.ReturnCompleted
	}
	return outcome{}, hostctl.ReturnNotSupported
}

func (h *Host) defineVM(settings *hostctl.Object, resources []*hostctl.Object) *hostctl.Object {
	guid := strings.ToUpper(uuid.NewString())
	vm := hostctl.NewObject("Msvm_ComputerSystem").
		Set("Name", guid).
		Set("ElementName", settings.String("ElementName")).
		Set("Caption", "Virtual Machine").
		Set("EnabledState", VMOff).
		Set("OnTimeInMilliseconds", uint64(0))
	vm.Path = h.pathOf("Msvm_ComputerSystem", guid)
	h.put(vm)

	subType := settings.String("VirtualSystemSubType")
	if subType == "" {
		subType = "Microsoft:Hyper-V:SubType:2"
	}
	vssd := hostctl.NewObject("Msvm_VirtualSystemSettingData").
		Set("InstanceID", "Microsoft:"+guid).
		Set("ElementName", settings.String("ElementName")).
		Set("VirtualSystemIdentifier", guid).
		Set("VirtualSystemType", realizedSystem).
		Set("VirtualSystemSubType", subType).
		Set("Notes", settings.String("Notes")).
		Set("GuestControlledCacheTypes", false).
		Set("LowMmioGapSize", uint64(128)).
		Set("HighMmioGapSize", uint64(512)).
		Set("CreationTime", time.Now().UTC().Format(time.RFC3339))
	vssd.Path = h.pathOf("Msvm_VirtualSystemSettingData", "Microsoft:"+guid)
	h.put(vssd)
	h.link("Msvm_SettingsDefineState", vm.Path, vssd.Path, nil)

	h.put(hostctl.NewObject("Msvm_ShutdownComponent").
		Set("SystemName", guid).
		Set("DeviceID", "Microsoft:"+guid+`\ShutdownComponent`))

	hasMemory, hasProcessor := false, false
	for _, r := range resources {
		switch r.Class {
		case "Msvm_MemorySettingData":
			hasMemory = true
		case "Msvm_ProcessorSettingData":
			hasProcessor = true
		}
		h.attach(vssd, r)
	}
	if !hasMemory {
		h.attach(vssd, hostctl.NewObject("Msvm_MemorySettingData").
			Set("VirtualQuantity", uint64(1024)).
			Set("DynamicMemoryEnabled", false))
	}
	if !hasProcessor {
		h.attach(vssd, hostctl.NewObject("Msvm_ProcessorSettingData").Set("VirtualQuantity", uint64(1)))
	}
	return vm
}

func (h *Host) attach(vssd, rs *hostctl.Object) *hostctl.Object {
	rasd := rs.Clone()
	id := vssd.String("InstanceID") + `\` + strings.ToUpper(uuid.NewString())
	rasd.Set("InstanceID", id)
	rasd.Path = h.pathOf(rasd.Class, id)
	h.put(rasd)
	h.link("Msvm_VirtualSystemSettingDataComponent", vssd.Path, rasd.Path, nil)
	return rasd
}

func (h *Host) defineSwitch(name, typ, adapter, notes string) *hostctl.Object {
	id := strings.ToLower(uuid.NewString())
	sw := hostctl.NewObject("Msvm_VirtualEthernetSwitch").
		Set("Name", id).
		Set("ElementName", name).
		Set("SwitchType", typ).
		Set("NetAdapter", adapter).
		Set("Notes", notes).
		Set("EnabledState", VMRunning)
	sw.Path = h.pathOf("Msvm_VirtualEthernetSwitch", id)
	return h.put(sw)
}

func destroySystem(h *Host, svc *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	target, ok := h.objects[in.String("AffectedSystem")]
	if !ok {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	switch svc.Class {
	case "Msvm_VirtualSystemManagementService":
		if target.Class != "Msvm_ComputerSystem" {
			return outcome{}, hostctl.ReturnInvalidParameter
		}
		if target.Uint32("EnabledState") != VMOff {
			return outcome{}, hostctl.ReturnInvalidState
		}
		h.destroyVM(target)
		return outcome{async: true}, hostctl.ReturnCompleted
	case "Msvm_VirtualEthernetSwitchManagementService":
		if target.Class != "Msvm_VirtualEthernetSwitch" {
			return outcome{}, hostctl.ReturnInvalidParameter
		}
		h.remove(target.Path)
		return outcome{}, hostctl.ReturnCompleted
	}
	return outcome{}, hostctl.ReturnNotSupported
}

func (h *Host) destroyVM(vm *hostctl.Object) {
	guid := vm.String("Name")
	if vssd := h.settingsOf(vm); vssd != nil {
		for _, p := range h.associators(vssd.Path, "Msvm_VirtualSystemSettingDataComponent", "") {
			h.releaseResource(h.objects[p])
			h.remove(p)
		}
		h.remove(vssd.Path)
	}
	for _, o := range h.selectObjects("Msvm_VirtualSystemSettingData", []condition{eq("VirtualSystemIdentifier", guid)}) {
		h.remove(o.Path)
	}
	for _, o := range h.selectObjects("Msvm_ShutdownComponent", []condition{eq("SystemName", guid)}) {
		h.remove(o.Path)
	}
	h.remove(vm.Path)
}

func modifySystemSettings(h *Host, svc *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	settings := in.Object("SystemSettings")
	if settings == nil {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	switch svc.Class {
	case "Msvm_VirtualSystemManagementService":
		vssd, ok := h.objects[settings.Path]
		if !ok || vssd.Class != "Msvm_VirtualSystemSettingData" {
			return outcome{}, hostctl.ReturnFileNotFound
		}
		for _, k := range []string{"ElementName", "Notes", "GuestControlledCacheTypes", "LowMmioGapSize", "HighMmioGapSize"} {
			if settings.Has(k) {
				vssd.Set(k, settings.Props[k])
			}
		}
		if vssd.String("VirtualSystemType") == realizedSystem && settings.Has("ElementName") {
			if vm := h.vmOfSettings(vssd); vm != nil {
				vm.Set("ElementName", settings.String("ElementName"))
			}
		}
		return outcome{}, hostctl.ReturnCompleted
	case "Msvm_VirtualEthernetSwitchManagementService":
		sw := h.first("Msvm_VirtualEthernetSwitch", eq("Name", settings.String("VirtualSystemIdentifier")))
		if sw == nil {
			return outcome{}, hostctl.ReturnFileNotFound
		}
		for _, k := range []string{"ElementName", "Notes"} {
			if settings.Has(k) {
				sw.Set(k, settings.Props[k])
			}
		}
		return outcome{}, hostctl.ReturnCompleted
	}
	return outcome{}, hostctl.ReturnNotSupported
}

func addResourceSettings(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	vssd, ok := h.objects[in.String("AffectedConfiguration")]
	if !ok || vssd.Class != "Msvm_VirtualSystemSettingData" {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	settings := in.Objects("ResourceSettings")
	if len(settings) == 0 {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	for _, rs := range settings {
		if code := h.checkResource(rs); code != hostctl.ReturnCompleted {
			return outcome{}, code
		}
	}
	var created []string
	for _, rs := range settings {
		h.claimResource(vssd, rs)
		created = append(created, h.attach(vssd, rs).Path)
	}
	return outcome{out: hostctl.Params{"ResultingResourceSettings": created}, async: true}, hostctl.ReturnCompleted
}

func (h *Host) checkResource(rs *hostctl.Object) uint32 {
	switch rs.String("ResourceSubType") {
	case subtypeGpuPartition:
		gpu := h.first("Msvm_PartitionableGpu", eq("Name", rs.String("HostResource")))
		if gpu == nil {
			return hostctl.ReturnInvalidParameter
		}
		if gpu.Uint32("PartitionsInUse") >= gpu.Uint32("PartitionCount") {
			return hostctl.ReturnOutOfMemory
		}
	case subtypePciExpress:
		dev := h.first("Msvm_AssignableDevice", eq("LocationPath", rs.String("HostResource")))
		switch {
		case dev == nil:
			return hostctl.ReturnFileNotFound
		case !dev.Bool("Dismounted"):
			return hostctl.ReturnAccessDenied
		case dev.String("AssignedVM") != "":
			return hostctl.ReturnInvalidState
		}
	case subtypeVirtualDisk:
		if h.first("Msvm_VirtualHardDiskSettingData", eq("Path", rs.String("HostResource"))) == nil {
			return hostctl.ReturnFileNotFound
		}
	}
	return hostctl.ReturnCompleted
}

func (h *Host) claimResource(vssd, rs *hostctl.Object) {
	switch rs.String("ResourceSubType") {
	case subtypeGpuPartition:
		gpu := h.first("Msvm_PartitionableGpu", eq("Name", rs.String("HostResource")))
		gpu.Set("PartitionsInUse", gpu.Uint32("PartitionsInUse")+1)
	case subtypePciExpress:
		dev := h.first("Msvm_AssignableDevice", eq("LocationPath", rs.String("HostResource")))
		dev.Set("AssignedVM", vssd.String("ElementName"))
	}
}

func (h *Host) releaseResource(rasd *hostctl.Object) {
	if rasd == nil {
		return
	}
	switch rasd.String("ResourceSubType") {
	case subtypeGpuPartition:
		if gpu := h.first("Msvm_PartitionableGpu", eq("Name", rasd.String("HostResource"))); gpu != nil {
			if n := gpu.Uint32("PartitionsInUse"); n > 0 {
				gpu.Set("PartitionsInUse", n-1)
			}
		}
	case subtypePciExpress:
		if dev := h.first("Msvm_AssignableDevice", eq("LocationPath", rasd.String("HostResource"))); dev != nil {
			dev.Set("AssignedVM", "")
		}
	}
}

func removeResourceSettings(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	paths := in.Strings("ResourceSettings")
	if len(paths) == 0 {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	for _, p := range paths {
		if _, ok := h.objects[p]; !ok {
			return outcome{}, hostctl.ReturnFileNotFound
		}
	}
	for _, p := range paths {
		h.removeResource(p)
	}
	return outcome{async: true}, hostctl.ReturnCompleted
}

func (h *Host) removeResource(path string) {
	rasd, ok := h.objects[path]
	if !ok {
		return
	}
	for _, o := range h.selectObjects(rasd.Class, nil) {
		if o.String("Parent") == path {
			h.removeResource(o.Path)
		}
	}
	for _, o := range h.selectObjects("Msvm_StorageAllocationSettingData", []condition{eq("Parent", path)}) {
		h.removeResource(o.Path)
	}
	h.releaseResource(rasd)
	h.remove(path)
}

func modifyResourceSettings(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	settings := in.Objects("ResourceSettings")
	if len(settings) == 0 {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	for _, rs := range settings {
		if _, ok := h.objects[rs.Path]; !ok {
			return outcome{}, hostctl.ReturnFileNotFound
		}
	}
	var modified []string
	for _, rs := range settings {
		rasd := h.objects[rs.Path]
		for k, v := range rs.Props {
			if k == "InstanceID" {
				continue
			}
			rasd.Set(k, v)
		}
		modified = append(modified, rasd.Path)
	}
	return outcome{out: hostctl.Params{"ResultingResourceSettings": modified}}, hostctl.ReturnCompleted
}

func exportSystemDefinition(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	vm, ok := h.objects[in.String("ComputerSystem")]
	if !ok {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	dir := in.String("ExportDirectory")
	if dir == "" {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	return outcome{async: true, complete: func() { vm.Set("LastExportDirectory", dir) }}, hostctl.ReturnCompleted
}

func createSnapshot(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	vm, ok := h.objects[in.String("AffectedSystem")]
	if !ok || vm.Class != "Msvm_ComputerSystem" {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	guid := vm.String("Name")
	now := time.Now()
	id := "Microsoft:" + strings.ToUpper(uuid.NewString())
	snap := hostctl.NewObject("Msvm_VirtualSystemSettingData").
		Set("InstanceID", id).
		Set("ElementName", fmt.Sprintf("%s - (%s)", vm.String("ElementName"), now.Format("2006/1/2 - 15:04:05"))).
		Set("VirtualSystemIdentifier", guid).
		Set("VirtualSystemType", realizedSnapshot).
		Set("Parent", vm.String("CurrentSnapshot")).
		Set("CreationTime", now.UTC().Format(time.RFC3339))
	snap.Path = h.pathOf("Msvm_VirtualSystemSettingData", id)
	h.put(snap)
	vm.Set("CurrentSnapshot", snap.Path)
	return outcome{out: hostctl.Params{"ResultingSnapshot": snap.Path}, async: true}, hostctl.ReturnCompleted
}

func (h *Host) snapshotAndVM(path string) (*hostctl.Object, *hostctl.Object, uint32) {
	snap, ok := h.objects[path]
	if !ok || snap.String("VirtualSystemType") != realizedSnapshot {
		return nil, nil, hostctl.ReturnFileNotFound
	}
	vm := h.vmByGuid(snap.String("VirtualSystemIdentifier"))
	if vm == nil {
		return nil, nil, hostctl.ReturnFileNotFound
	}
	return snap, vm, hostctl.ReturnCompleted
}

func applySnapshot(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	snap, vm, code := h.snapshotAndVM(in.String("Snapshot"))
	if code != hostctl.ReturnCompleted {
		return outcome{}, code
	}
	if vm.Uint32("EnabledState") == VMRunning {
		return outcome{}, hostctl.ReturnInvalidState
	}
	vm.Set("CurrentSnapshot", snap.Path)
	return outcome{async: true}, hostctl.ReturnCompleted
}

func destroySnapshot(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	snap, vm, code := h.snapshotAndVM(in.String("AffectedSnapshot"))
	if code != hostctl.ReturnCompleted {
		return outcome{}, code
	}
	parent := snap.String("Parent")
	for _, o := range h.selectObjects("Msvm_VirtualSystemSettingData", []condition{eq("Parent", snap.Path)}) {
		o.Set("Parent", parent)
	}
	if vm.String("CurrentSnapshot") == snap.Path {
		vm.Set("CurrentSnapshot", parent)
	}
	h.remove(snap.Path)
	return outcome{async: true}, hostctl.ReturnCompleted
}

func (h *Host) vhd(path string) *hostctl.Object {
	return h.first("Msvm_VirtualHardDiskSettingData", eq("Path", path))
}

func createVirtualHardDisk(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	sd := in.Object("VirtualDiskSettingData")
	if sd == nil || sd.String("Path") == "" {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	if h.vhd(sd.String("Path")) != nil {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	typ := sd.Uint16("Type")
	size := sd.Uint64("MaxInternalSize")
	if typ == vhdDifferencing {
		parent := h.vhd(sd.String("ParentPath"))
		if parent == nil {
			return outcome{}, hostctl.ReturnFileNotFound
		}
		size = parent.Uint64("MaxInternalSize")
	} else if size == 0 {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	h.putVhd(sd.String("Path"), typ, sd.Uint16("Format"), size, sd.String("ParentPath"))
	return outcome{async: true}, hostctl.ReturnCompleted
}

func (h *Host) putVhd(path string, typ, format uint16, size uint64, parent string) *hostctl.Object {
	if format == 0 {
		format = 3
		if strings.HasSuffix(strings.ToLower(path), ".vhd") {
			format = 2
		}
	}
	fileSize := minVhdFileSize
	if typ == vhdFixed {
		fileSize = size
	}
	return h.put(hostctl.NewObject("Msvm_VirtualHardDiskSettingData").
		Set("Path", path).
		Set("Type", typ).
		Set("Format", format).
		Set("MaxInternalSize", size).
		Set("FileSize", fileSize).
		Set("ParentPath", parent).
		Set("BlockSize", uint32(32*1024*1024)).
		Set("LogicalSectorSize", uint32(512)).
		Set("PhysicalSectorSize", uint32(4096)).
		Set("Attached", false))
}

func resizeVirtualHardDisk(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	v := h.vhd(in.String("Path"))
	if v == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	size := in.Uint64("MaxInternalSize")
	if size < v.Uint64("MaxInternalSize") {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	v.Set("MaxInternalSize", size)
	if v.Uint16("Type") == vhdFixed {
		v.Set("FileSize", size)
	}
	return outcome{async: true}, hostctl.ReturnCompleted
}

func compactVirtualHardDisk(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	v := h.vhd(in.String("Path"))
	if v == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if v.Uint16("Type") == vhdFixed {
		return outcome{}, hostctl.ReturnInvalidParameter
	}
	if v.Bool("Attached") {
		return outcome{}, hostctl.ReturnInvalidState
	}
	fileSize := v.Uint64("FileSize") / 2
	if fileSize < minVhdFileSize {
		fileSize = minVhdFileSize
	}
	v.Set("FileSize", fileSize)
	return outcome{async: true}, hostctl.ReturnCompleted
}

func attachVirtualHardDisk(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	v := h.vhd(in.String("Path"))
	if v == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if v.Bool("Attached") {
		return outcome{}, hostctl.ReturnInvalidState
	}
	v.Set("Attached", true)
	return outcome{async: true}, hostctl.ReturnCompleted
}

func detachVirtualHardDisk(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	v := h.vhd(in.String("Path"))
	if v == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if !v.Bool("Attached") {
		return outcome{}, hostctl.ReturnInvalidState
	}
	v.Set("Attached", false)
	return outcome{async: true}, hostctl.ReturnCompleted
}

func getVirtualHardDiskSettingData(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	v := h.vhd(in.String("Path"))
	if v == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	return outcome{out: hostctl.Params{"SettingData": v.Clone()}}, hostctl.ReturnCompleted
}

func dismountAssignableDevice(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	dev := h.first("Msvm_AssignableDevice", eq("LocationPath", in.String("LocationPath")))
	if dev == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if dev.Bool("Dismounted") {
		return outcome{}, hostctl.ReturnInvalidState
	}
	dev.Set("Dismounted", true)
	return outcome{out: hostctl.Params{"MountedDevice": dev.Path}, async: true}, hostctl.ReturnCompleted
}

func mountAssignableDevice(h *Host, _ *hostctl.Object, in hostctl.Params) (outcome, uint32) {
	dev := h.first("Msvm_AssignableDevice", eq("LocationPath", in.String("LocationPath")))
	if dev == nil {
		return outcome{}, hostctl.ReturnFileNotFound
	}
	if !dev.Bool("Dismounted") || dev.String("AssignedVM") != "" {
		return outcome{}, hostctl.ReturnInvalidState
	}
	dev.Set("Dismounted", false)
	return outcome{async: true}, hostctl.ReturnCompleted
}
