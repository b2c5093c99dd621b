package gpu

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/resourcepool"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hostctl"
	"math"
	"strings"
)

const partitionClass = "Msvm_GpuPartitionSettingData"

// PartitionSettings VRAM单位为MB，为0时使用GPU报告的默认值
type PartitionSettings struct {
	GpuID         string
	MinVRAMMB     uint64
	MaxVRAMMB     uint64
	OptimalVRAMMB uint64
	MaxEncode     uint64
	MaxDecode     uint64
	MaxCompute    uint64
}

// maxVRAMMB 换算为字节后不溢出uint64
const maxVRAMMB = math.MaxUint64 / utils.MB

func (s *PartitionSettings) validate() error {
	switch {
	case strings.TrimSpace(s.GpuID) == "":
		return errs.Newf(errs.InvalidParameter, "add gpu partition", "GPU ID不能为空")
	case s.MinVRAMMB > maxVRAMMB || s.MaxVRAMMB > maxVRAMMB || s.OptimalVRAMMB > maxVRAMMB:
		return errs.Newf(errs.InvalidParameter, "add gpu partition", "显存不能超过%dMB", uint64(maxVRAMMB))
	case s.MaxVRAMMB > 0 && s.MinVRAMMB > s.MaxVRAMMB:
		return errs.Newf(errs.InvalidParameter, "add gpu partition", "最小显存%dMB大于最大显存%dMB", s.MinVRAMMB, s.MaxVRAMMB)
	case s.OptimalVRAMMB > 0 && (s.OptimalVRAMMB < s.MinVRAMMB || (s.MaxVRAMMB > 0 && s.OptimalVRAMMB > s.MaxVRAMMB)):
		return errs.Newf(errs.InvalidParameter, "add gpu partition", "最佳显存%dMB不在[%d,%d]MB之间", s.OptimalVRAMMB, s.MinVRAMMB, s.MaxVRAMMB)
	}
	return nil
}

type Partition struct {
	ID      string `json:"id"`
	Path    string `json:"-"`
	GpuID   string `json:"gpuId"`
	VRAM    Range  `json:"vram"`
	Encode  uint64 `json:"maxEncode"`
	Decode  uint64 `json:"maxDecode"`
	Compute uint64 `json:"maxCompute"`
}

func firstNonZero(vs ...uint64) uint64 {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}

// AddPartition 为虚拟机添加一个GPU分区并等待完成，虚拟机需要处于关机状态
func AddPartition(ctx context.Context, vm *virtualmachine.VirtualMachine, s PartitionSettings) (*Partition, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	api := vm.API()
	g, err := Get(ctx, api, s.GpuID)
	if err != nil {
		return nil, err
	}
	if !g.Partitionable {
		return nil, errs.Newf(errs.InvalidParameter, "add gpu partition", "GPU[%s]不支持分区", g.Name)
	}
	if s.MinVRAMMB*utils.MB > g.VRAM.Max {
		return nil, errs.Newf(errs.InvalidParameter, "add gpu partition", "最小显存%dMB超过GPU[%s]每个分区的显存%s",
			s.MinVRAMMB, g.Name, utils.HumanSize(g.VRAM.Max))
	}
	if g.Available() == 0 {
		return nil, errs.Newf(errs.CapacityExceeded, "add gpu partition", "GPU[%s]的%d个分区已全部分配", g.Name, g.TotalPartitions)
	}
	if vm.Status().State != virtualmachine.Off {
		return nil, errs.Newf(errs.InvalidState, "add gpu partition", "虚拟机[%s]当前状态为%s，需要先关机", vm.Name(), vm.Status())
	}
	minV := firstNonZero(s.MinVRAMMB*utils.MB, g.VRAM.Min, 1)
	maxV := firstNonZero(s.MaxVRAMMB*utils.MB, g.VRAM.Max, minV)
	optV := firstNonZero(s.OptimalVRAMMB*utils.MB, maxV)
	overrides := hostctl.Params{
		"HostResource":            []string{g.ID},
		"MinPartitionVRAM":        minV,
		"MaxPartitionVRAM":        maxV,
		"OptimalPartitionVRAM":    optV,
		"MinPartitionEncode":      g.Encode.Min,
		"MaxPartitionEncode":      firstNonZero(s.MaxEncode, g.Encode.Max),
		"OptimalPartitionEncode":  firstNonZero(s.MaxEncode, g.Encode.Optimal),
		"MinPartitionDecode":      g.Decode.Min,
		"MaxPartitionDecode":      firstNonZero(s.MaxDecode, g.Decode.Max),
		"OptimalPartitionDecode":  firstNonZero(s.MaxDecode, g.Decode.Optimal),
		"MinPartitionCompute":     g.Compute.Min,
		"MaxPartitionCompute":     firstNonZero(s.MaxCompute, g.Compute.Max),
		"OptimalPartitionCompute": firstNonZero(s.MaxCompute, g.Compute.Optimal),
	}
	settings, err := vm.Settings(ctx)
	if err != nil {
		return nil, err
	}
	logging.L().Info(fmt.Sprintf("为虚拟机[%s]添加GPU[%s]分区", vm.Name(), g.Name))
	path, err := resourcepool.AddAndWait(ctx, api, settings.Path, resourcepool.SubtypeGpuPartition, overrides)
	if err != nil {
		logging.L().Errorf("为虚拟机[%s]添加GPU分区失败: %v", vm.Name(), err)
		return nil, err
	}
	o, err := api.Host.GetObject(ctx, path)
	if err != nil {
		return nil, errs.FromHost("get gpu partition", path, err)
	}
	p := toPartition(o)
	return &p, nil
}

func toPartition(o *hostctl.Object) Partition {
	return Partition{
		ID:      o.String("InstanceID"),
		Path:    o.Path,
		GpuID:   o.String("HostResource"),
		VRAM:    rangeOf(o, "PartitionVRAM"),
		Encode:  o.Uint64("MaxPartitionEncode"),
		Decode:  o.Uint64("MaxPartitionDecode"),
		Compute: o.Uint64("MaxPartitionCompute"),
	}
}

func ListPartitions(ctx context.Context, vm *virtualmachine.VirtualMachine) ([]Partition, error) {
	rs, err := vm.Resources(ctx, partitionClass, resourcepool.SubtypeGpuPartition)
	if err != nil {
		return nil, err
	}
	ret := make([]Partition, 0, len(rs))
	for _, r := range rs {
		ret = append(ret, toPartition(r))
	}
	return ret, nil
}

// RemovePartition 按分区ID删除
func RemovePartition(ctx context.Context, vm *virtualmachine.VirtualMachine, ID string) error {
	ps, err := ListPartitions(ctx, vm)
	if err != nil {
		return err
	}
	for _, p := range ps {
		if p.ID == ID {
			logging.L().Info(fmt.Sprintf("删除虚拟机[%s]的GPU分区[%s]", vm.Name(), ID))
			return resourcepool.Remove(ctx, vm.API(), p.Path)
		}
	}
	return errs.Newf(errs.NotFound, "remove gpu partition", "虚拟机[%s]上没有GPU分区[%s]", vm.Name(), ID)
}

// RemoveAllPartitions 返回删除的分区数
func RemoveAllPartitions(ctx context.Context, vm *virtualmachine.VirtualMachine) (int, error) {
	ps, err := ListPartitions(ctx, vm)
	if err != nil || len(ps) == 0 {
		return 0, err
	}
	paths := make([]string, 0, len(ps))
	for _, p := range ps {
		paths = append(paths, p.Path)
	}
	if err := resourcepool.Remove(ctx, vm.API(), paths...); err != nil {
		return 0, err
	}
	return len(paths), nil
}
