package protocol

type ClusterInfo struct {
	Name          string `json:"name"`
	NodeCount     int    `json:"nodeCount"`
	GroupCount    int    `json:"groupCount"`
	ResourceCount int    `json:"resourceCount"`
}

type NodeInfo struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Code  int32  `json:"code"`
}

type GroupInfo struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Code  int32  `json:"code"`
	Owner string `json:"owner,omitempty"`
}

type ResourceInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	State string `json:"state"`
	Code  int32  `json:"code"`
	Owner string `json:"owner,omitempty"`
}

// OperationResult 集群操作的结果：Completed、Accepted(997，异步进行中)或Skipped
type OperationResult struct {
	Target  string `json:"target"`
	Action  string `json:"action"`
	Outcome string `json:"outcome"`
}

type SharedVolumePathCheck struct {
	Path           string `json:"path"`
	OnSharedVolume bool   `json:"onSharedVolume"`
}

type HostInfo struct {
	Name                       string         `json:"name"`
	Driver                     string         `json:"driver"`
	Cluster                    string         `json:"cluster,omitempty"`
	LogicalProcessors          uint32         `json:"logicalProcessors"`
	TotalMemory                uint64         `json:"totalMemory"`
	TotalMemoryHuman           string         `json:"totalMemoryHuman"`
	VmCount                    int            `json:"vmCount"`
	VmStates                   map[string]int `json:"vmStates"`
	DefaultVirtualHardDiskPath string         `json:"defaultVirtualHardDiskPath"`
	DefaultExternalDataRoot    string         `json:"defaultExternalDataRoot"`
	GpuCount                   int            `json:"gpuCount"`
	AvailableGpuPartitions     uint32         `json:"availableGpuPartitions"`
	Pools                      []string       `json:"pools"`
}
