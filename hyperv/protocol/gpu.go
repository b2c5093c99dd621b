package protocol

// GpuPartitionReq 显存单位MB，为0时使用GPU报告的默认值
type GpuPartitionReq struct {
	GpuID         string `json:"gpuId" valid:"Required"`
	MinVRAMMB     uint64 `json:"minVramMB,omitempty"`
	MaxVRAMMB     uint64 `json:"maxVramMB,omitempty"`
	OptimalVRAMMB uint64 `json:"optimalVramMB,omitempty"`
	MaxEncode     uint64 `json:"maxEncode,omitempty"`
	MaxDecode     uint64 `json:"maxDecode,omitempty"`
	MaxCompute    uint64 `json:"maxCompute,omitempty"`
}

// MmioReq 如"3GB"、"33280MB"
type MmioReq struct {
	Low  string `json:"low" valid:"Required"`
	High string `json:"high" valid:"Required"`
}

type DeviceReq struct {
	LocationPath string `json:"locationPath" valid:"Required"`
}
