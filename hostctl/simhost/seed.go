package simhost

import (
	"hyperv-facade/hostctl"
	"strings"
)

// 分配能力中的ValueRole
const (
	roleDefault   uint16 = 0
	roleSupported uint16 = 1
	roleMinimum   uint16 = 2
	roleMaximum   uint16 = 3
)

var roleNames = map[uint16]string{
	roleDefault:   "Default",
	roleSupported: "Supported",
	roleMinimum:   "Minimum",
	roleMaximum:   "Maximum",
}

var pools = []struct {
	subtype string
	class   string
}{
	{subtypeGpuPartition, "Msvm_GpuPartitionSettingData"},
	{subtypePciExpress, "Msvm_PciExpressSettingData"},
	{"Microsoft:Hyper-V:Synthetic Disk Drive", "Msvm_ResourceAllocationSettingData"},
	{"Microsoft:Hyper-V:Synthetic DVD Drive", "Msvm_ResourceAllocationSettingData"},
	{subtypeVirtualDisk, "Msvm_StorageAllocationSettingData"},
	{"Microsoft:Hyper-V:Virtual CD/DVD Disk", "Msvm_StorageAllocationSettingData"},
}

func (h *Host) seedServices() {
	for _, class := range []string{
		"Msvm_VirtualSystemManagementService",
		"Msvm_VirtualSystemSnapshotService",
		"Msvm_ImageManagementService",
		"Msvm_VirtualEthernetSwitchManagementService",
		"Msvm_AssignableDeviceService",
	} {
		o := hostctl.NewObject(class).Set("Name", class).Set("SystemName", h.hostname)
		o.Path = h.pathOf(class, class)
		h.put(o)
	}
	host := hostctl.NewObject("Msvm_ComputerSystem").
		Set("Name", h.hostname).
		Set("ElementName", h.hostname).
		Set("Caption", "Hosting Computer System").
		Set("EnabledState", VMRunning).
		Set("NumberOfLogicalProcessors", uint32(16)).
		Set("TotalPhysicalMemory", uint64(64*1024*1024*1024))
	host.Path = h.pathOf("Msvm_ComputerSystem", h.hostname)
	h.put(host)
	h.put(hostctl.NewObject("Msvm_VirtualSystemManagementServiceSettingData").
		Set("DefaultVirtualHardDiskPath", `C:\ProgramData\Microsoft\Windows\Virtual Hard Disks`).
		Set("DefaultExternalDataRoot", `C:\ProgramData\Microsoft\Windows\Hyper-V`))
	for _, p := range pools {
		h.addPool(p.subtype, p.class)
	}
}

func (h *Host) addPool(subtype, class string) {
	key := strings.ReplaceAll(subtype, " ", "")
	pool := hostctl.NewObject("Msvm_ResourcePool").
		Set("InstanceID", key).
		Set("ResourceSubType", subtype).
		Set("Primordial", true)
	pool.Path = h.pathOf("Msvm_ResourcePool", key)
	h.put(pool)
	caps := hostctl.NewObject("Msvm_AllocationCapabilities").
		Set("InstanceID", key).
		Set("ResourceSubType", subtype)
	caps.Path = h.pathOf("Msvm_AllocationCapabilities", key)
	h.put(caps)
	h.link("Msvm_ElementCapabilities", pool.Path, caps.Path, nil)
	for _, role := range []uint16{roleDefault, roleSupported, roleMinimum, roleMaximum} {
		id := `Microsoft:Definition\` + key + `\` + roleNames[role]
		tmpl := hostctl.NewObject(class).
			Set("InstanceID", id).
			Set("ElementName", roleNames[role]).
			Set("ResourceSubType", subtype)
		tmpl.Path = h.pathOf(class, id)
		h.put(tmpl)
		h.link("Msvm_SettingsDefineCapabilities", caps.Path, tmpl.Path, hostctl.Params{"ValueRole": role})
	}
}

func (h *Host) poolObjects(subtype string) (pool, caps *hostctl.Object) {
	pool = h.first("Msvm_ResourcePool", eq("ResourceSubType", subtype))
	if pool == nil {
		return nil, nil
	}
	if paths := h.associators(pool.Path, "Msvm_ElementCapabilities", "Msvm_AllocationCapabilities"); len(paths) > 0 {
		caps = h.objects[paths[0]]
	}
	return pool, caps
}

// RemovePool 删除资源池及其分配能力
func (h *Host) RemovePool(subtype string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pool, caps := h.poolObjects(subtype)
	if caps != nil {
		h.remove(caps.Path)
	}
	if pool != nil {
		h.remove(pool.Path)
	}
}

// RemoveCapabilities 保留资源池，删除其分配能力
func (h *Host) RemoveCapabilities(subtype string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, caps := h.poolObjects(subtype); caps != nil {
		h.remove(caps.Path)
	}
}

// RemoveDefaultTemplate 只删除ValueRole为0的模板，其余角色的模板仍然存在
func (h *Host) RemoveDefaultTemplate(subtype string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, caps := h.poolObjects(subtype)
	if caps == nil {
		return
	}
	for _, p := range h.references(caps.Path, "Msvm_SettingsDefineCapabilities") {
		if a := h.objects[p]; a != nil && a.Uint16("ValueRole") == roleDefault {
			h.remove(a.String("PartComponent"))
		}
	}
}

// AddVM 直接创建处于state状态的虚拟机，返回其对象
func (h *Host) AddVM(name string, state uint32) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	vm := h.defineVM(hostctl.NewObject("Msvm_VirtualSystemSettingData").Set("ElementName", name), []*hostctl.Object{
		hostctl.NewObject("Msvm_MemorySettingData").
			Set("VirtualQuantity", uint64(2048)).
			Set("DynamicMemoryEnabled", true).
			Set("Reservation", uint64(512)).
			Set("Limit", uint64(1048576)),
		hostctl.NewObject("Msvm_ProcessorSettingData").Set("VirtualQuantity", uint64(2)),
	})
	vm.Set("EnabledState", state)
	return vm.Clone()
}

// VMState 读取虚拟机当前的EnabledState
func (h *Host) VMState(name string) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if vm := h.first("Msvm_ComputerSystem", eq("ElementName", name), eq("Caption", "Virtual Machine")); vm != nil {
		return vm.Uint32("EnabledState")
	}
	return 0
}

// SetVMState 直接修改虚拟机的EnabledState
func (h *Host) SetVMState(name string, state uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if vm := h.first("Msvm_ComputerSystem", eq("ElementName", name), eq("Caption", "Virtual Machine")); vm != nil {
		vm.Set("EnabledState", state)
	}
}

// Settings 返回虚拟机的设置对象
func (h *Host) Settings(name string) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	vm := h.first("Msvm_ComputerSystem", eq("ElementName", name), eq("Caption", "Virtual Machine"))
	if vm == nil {
		return nil
	}
	if vssd := h.settingsOf(vm); vssd != nil {
		return vssd.Clone()
	}
	return nil
}

// Resources 返回虚拟机上指定类型的资源设置
func (h *Host) Resources(name, class string) []*hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	vm := h.first("Msvm_ComputerSystem", eq("ElementName", name), eq("Caption", "Virtual Machine"))
	if vm == nil {
		return nil
	}
	vssd := h.settingsOf(vm)
	if vssd == nil {
		return nil
	}
	var ret []*hostctl.Object
	for _, p := range h.associators(vssd.Path, "Msvm_VirtualSystemSettingDataComponent", class) {
		ret = append(ret, h.objects[p].Clone())
	}
	return ret
}

type GPU struct {
	Name           string
	FriendlyName   string
	DriverVersion  string
	Partitionable  bool
	PartitionCount uint32
	// 每个分区的显存，字节
	MinPartitionVRAM     uint64
	MaxPartitionVRAM     uint64
	OptimalPartitionVRAM uint64
}

func (h *Host) AddGPU(g GPU) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	o := hostctl.NewObject("Msvm_PartitionableGpu").
		Set("Name", g.Name).
		Set("ElementName", g.FriendlyName).
		Set("DriverVersion", g.DriverVersion).
		Set("SupportsPartitioning", g.Partitionable).
		Set("PartitionCount", g.PartitionCount).
		Set("PartitionsInUse", uint32(0)).
		Set("MinPartitionCount", uint32(1)).
		Set("MaxPartitionCount", g.PartitionCount).
		Set("OptimalPartitionCount", g.PartitionCount).
		Set("Status", "OK").
		Set("MinPartitionVRAM", g.MinPartitionVRAM).
		Set("MaxPartitionVRAM", g.MaxPartitionVRAM).
		Set("OptimalPartitionVRAM", g.OptimalPartitionVRAM).
		Set("MinPartitionEncode", uint64(0)).
		Set("MaxPartitionEncode", uint64(100)).
		Set("OptimalPartitionEncode", uint64(100)).
		Set("MinPartitionDecode", uint64(0)).
		Set("MaxPartitionDecode", uint64(100)).
		Set("OptimalPartitionDecode", uint64(100)).
		Set("MinPartitionCompute", uint64(0)).
		Set("MaxPartitionCompute", uint64(100)).
		Set("OptimalPartitionCompute", uint64(100))
	return h.put(o).Clone()
}

type Device struct {
	LocationPath string
	InstanceID   string
	FriendlyName string
	ClassName    string
	Vendor       string
	Dismounted   bool
	// 0或1可用，3不兼容，4错误
	StatusCode uint16
	// 需要的MMIO空间，MB
	MmioLow  uint64
	MmioHigh uint64
}

func (h *Host) AddDevice(d Device) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	o := hostctl.NewObject("Msvm_AssignableDevice").
		Set("LocationPath", d.LocationPath).
		Set("DeviceInstancePath", d.InstanceID).
		Set("ElementName", d.FriendlyName).
		Set("ClassName", d.ClassName).
		Set("Vendor", d.Vendor).
		Set("Dismounted", d.Dismounted).
		Set("StatusCode", d.StatusCode).
		Set("AssignedVM", "").
		Set("MmioSpaceRequired", d.MmioLow).
		Set("MmioSpaceRequiredHigh", d.MmioHigh)
	return h.put(o).Clone()
}

func (h *Host) AddSwitch(name, typ, adapter string) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.defineSwitch(name, typ, adapter, "").Clone()
}

// AddVhd typ: 2固定 3动态 4差异
func (h *Host) AddVhd(path string, typ uint16, size uint64, parent string) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.putVhd(path, typ, 0, size, parent).Clone()
}

// NewDemo 带有集群、虚拟机、GPU、直通设备、交换机和磁盘的演示主机
func NewDemo(hostname string) *Host {
	h := New(hostname)
	h.EnableCluster("hv-cluster")
	h.AddNode("hv-node1", NodeUp)
	h.AddNode("hv-node2", NodeUp)
	h.AddGroup("Cluster Group", GroupOnline, "hv-node1")
	h.AddGroup("Available Storage", GroupOnline, "hv-node1")
	h.AddGroup("web01", GroupOnline, "hv-node2")
	h.AddGroup("db01", GroupOffline, "hv-node1")
	h.AddResource("Cluster IP Address", "Cluster Group", "IP Address", ResourceOnline)
	h.AddResource("Cluster Name", "Cluster Group", "Network Name", ResourceOnline)
	h.AddSharedVolume("Cluster Disk 1", "Available Storage", `C:\ClusterStorage\Volume1`)
	h.AddResource("Virtual Machine web01", "web01", "Virtual Machine", ResourceOnline)
	h.AddResource("Virtual Machine db01", "db01", "Virtual Machine", ResourceOffline)

	h.AddVM("web01", VMRunning)
	h.AddVM("db01", VMOff)
	h.AddGPU(GPU{
		Name:                 `PCI\VEN_10DE&DEV_2236&SUBSYS_148210DE&REV_A1\4&1A2B3C4D&0&0000`,
		FriendlyName:         "NVIDIA A10",
		DriverVersion:        "31.0.15.3623",
		Partitionable:        true,
		PartitionCount:       8,
		MinPartitionVRAM:     256 * 1024 * 1024,
		MaxPartitionVRAM:     3 * 1024 * 1024 * 1024,
		OptimalPartitionVRAM: 3 * 1024 * 1024 * 1024,
	})
	h.AddGPU(GPU{
		Name:          `PCI\VEN_1414&DEV_008E&SUBSYS_00000000&REV_00\000000`,
		FriendlyName:  "Microsoft Basic Render Driver",
		DriverVersion: "10.0.20348.1",
	})
	h.AddDevice(Device{
		LocationPath: "PCIROOT(0)#PCI(0300)#PCI(0000)",
		InstanceID:   `PCI\VEN_10DE&DEV_1EB8&SUBSYS_12A210DE&REV_A1\4&2F0B6D9&0&0018`,
		FriendlyName: "NVIDIA Tesla T4",
		ClassName:    "Display",
		Vendor:       "NVIDIA",
		Dismounted:   true,
		StatusCode:   1,
		MmioLow:      128,
		MmioHigh:     32768,
	})
	h.AddDevice(Device{
		LocationPath: "PCIROOT(0)#PCI(0100)#PCI(0000)",
		InstanceID:   `PCI\VEN_144D&DEV_A808&SUBSYS_A801144D&REV_00\4&1C3B2A1&0&0008`,
		FriendlyName: "Samsung NVMe Controller",
		ClassName:    "SCSIAdapter",
		Vendor:       "Samsung",
		StatusCode:   1,
		MmioLow:      64,
	})
	h.AddSwitch("Default Switch", "Internal", "")
	h.AddVhd(`C:\VMs\web01.vhdx`, 3, 40*1024*1024*1024, "")
	return h
}
