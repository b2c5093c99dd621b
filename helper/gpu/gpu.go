// Package gpu GPU分区与直通设备（DDA）分配。
package gpu

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/hostctl"
)

const gpuClass = "Msvm_PartitionableGpu"

type Range struct {
	Min     uint64 `json:"min"`
	Max     uint64 `json:"max"`
	Optimal uint64 `json:"optimal"`
}

// GPU 可分区GPU，VRAM为每个分区的字节数
type GPU struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DriverVersion     string `json:"driverVersion"`
	Partitionable     bool   `json:"partitionable"`
	Status            string `json:"status"`
	TotalPartitions   uint32 `json:"totalPartitions"`
	PartitionsInUse   uint32 `json:"partitionsInUse"`
	MinPartitions     uint32 `json:"minPartitions"`
	MaxPartitions     uint32 `json:"maxPartitions"`
	OptimalPartitions uint32 `json:"optimalPartitions"`
	VRAM              Range  `json:"vram"`
	Encode            Range  `json:"encode"`
	Decode            Range  `json:"decode"`
	Compute           Range  `json:"compute"`
}

// Available 剩余可分配的分区数
func (g *GPU) Available() uint32 {
	if g.PartitionsInUse >= g.TotalPartitions {
		return 0
	}
	return g.TotalPartitions - g.PartitionsInUse
}

func rangeOf(o *hostctl.Object, name string) Range {
	return Range{
		Min:     o.Uint64("Min" + name),
		Max:     o.Uint64("Max" + name),
		Optimal: o.Uint64("Optimal" + name),
	}
}

func toGPU(o *hostctl.Object) GPU {
	return GPU{
		ID:                o.String("Name"),
		Name:              o.String("ElementName"),
		DriverVersion:     o.String("DriverVersion"),
		Partitionable:     o.Bool("SupportsPartitioning"),
		Status:            o.String("Status"),
		TotalPartitions:   o.Uint32("PartitionCount"),
		PartitionsInUse:   o.Uint32("PartitionsInUse"),
		MinPartitions:     o.Uint32("MinPartitionCount"),
		MaxPartitions:     o.Uint32("MaxPartitionCount"),
		OptimalPartitions: o.Uint32("OptimalPartitionCount"),
		VRAM:              rangeOf(o, "PartitionVRAM"),
		Encode:            rangeOf(o, "PartitionEncode"),
		Decode:            rangeOf(o, "PartitionDecode"),
		Compute:           rangeOf(o, "PartitionCompute"),
	}
}

// List 主机上所有GPU
func List(ctx context.Context, api *helper.API) ([]GPU, error) {
	logging.L().Debug("查询主机GPU")
	objs, err := handle.QueryAll(ctx, api.Host, "SELECT * FROM "+gpuClass)
	if err != nil {
		return nil, err
	}
	ret := make([]GPU, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, toGPU(o))
	}
	return ret, nil
}

// ListPartitionable 只返回支持分区的GPU
func ListPartitionable(ctx context.Context, api *helper.API) ([]GPU, error) {
	all, err := List(ctx, api)
	if err != nil {
		return nil, err
	}
	ret := make([]GPU, 0, len(all))
	for _, g := range all {
		if g.Partitionable {
			ret = append(ret, g)
		}
	}
	return ret, nil
}

func Get(ctx context.Context, api *helper.API, ID string) (*GPU, error) {
	q := fmt.Sprintf("SELECT * FROM %s WHERE Name = %s", gpuClass, utils.Quote(ID))
	o, err := handle.QueryFirst(ctx, api.Host, q)
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.NotFound, "get gpu", "GPU[%s]不存在", ID)
		}
		return nil, err
	}
	g := toGPU(o)
	return &g, nil
}

type Summary struct {
	GpuCount            int    `json:"gpuCount"`
	PartitionableCount  int    `json:"partitionableCount"`
	TotalPartitions     uint32 `json:"totalPartitions"`
	PartitionsInUse     uint32 `json:"partitionsInUse"`
	AvailablePartitions uint32 `json:"availablePartitions"`
}

func GetSummary(ctx context.Context, api *helper.API) (*Summary, error) {
	all, err := List(ctx, api)
	if err != nil {
		return nil, err
	}
	s := &Summary{GpuCount: len(all)}
	for _, g := range all {
		if !g.Partitionable {
			continue
		}
		s.PartitionableCount++
		s.TotalPartitions += g.TotalPartitions
		s.PartitionsInUse += g.PartitionsInUse
		s.AvailablePartitions += g.Available()
	}
	return s, nil
}
