package protocol

type VirtualMachineInfo struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	State          string     `json:"state"`
	StateCode      uint32     `json:"stateCode"`
	UptimeMillis   uint64     `json:"uptimeMillis"`
	Generation     int        `json:"generation,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	MemoryMB       uint64     `json:"memoryMB"`
	DynamicMemory  bool       `json:"dynamicMemory"`
	ProcessorCount uint64     `json:"processorCount"`
	Disks          []DiskInfo `json:"disks"`
	Dvds           []DiskInfo `json:"dvds"`
}

type DiskInfo struct {
	Path      string `json:"path"`
	DrivePath string `json:"drivePath,omitempty"`
}

// VirtualMachineBrief 列表查询只返回状态，不读取设置
type VirtualMachineBrief struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	StateCode    uint32 `json:"stateCode"`
	UptimeMillis uint64 `json:"uptimeMillis"`
}

// VirtualMachineQuery State按状态名过滤，忽略大小写
type VirtualMachineQuery struct {
	Names []string `form:"name"`
	State string   `form:"state"`
}

type VirtualMachineConfig struct {
	MemoryMB       uint64  `json:"memoryMB,omitempty"`
	ProcessorCount uint64  `json:"processorCount,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}
