package hyperv

import (
	"context"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/gpu"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/protocol"
)

func (hv *HyperV) QueryGpus(ctx context.Context) ([]gpu.GPU, error) {
	if v := hv.Cache.GetGpus(); v != nil {
		logging.L().Debug("本次查询使用了缓存")
		return v, nil
	}
	gpus, err := gpu.List(ctx, hv.Api)
	if err != nil {
		return nil, err
	}
	hv.Cache.CacheGpus(gpus)
	return gpus, nil
}

func (hv *HyperV) QueryPartitionableGpus(ctx context.Context) ([]gpu.GPU, error) {
	all, err := hv.QueryGpus(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]gpu.GPU, 0, len(all))
	for _, g := range all {
		if g.Partitionable {
			ret = append(ret, g)
		}
	}
	return ret, nil
}

func (hv *HyperV) QueryPartitions(ctx context.Context, vmNameOrID string) ([]gpu.Partition, error) {
	vm, err := hv.getVirtualMachine(ctx, vmNameOrID)
	if err != nil {
		return nil, err
	}
	return gpu.ListPartitions(ctx, vm)
}

func (hv *HyperV) AddPartition(ctx context.Context, vmNameOrID string, p protocol.GpuPartitionReq) (*gpu.Partition, error) {
	var ret *gpu.Partition
	err := hv.withVirtualMachine(ctx, vmNameOrID, "添加GPU分区", func(vm *virtualmachine.VirtualMachine) error {
		var err error
		ret, err = gpu.AddPartition(ctx, vm, gpu.PartitionSettings{
			GpuID:         p.GpuID,
			MinVRAMMB:     p.MinVRAMMB,
			MaxVRAMMB:     p.MaxVRAMMB,
			OptimalVRAMMB: p.OptimalVRAMMB,
			MaxEncode:     p.MaxEncode,
			MaxDecode:     p.MaxDecode,
			MaxCompute:    p.MaxCompute,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	hv.Cache.Clean(cache.Gpus)
	return ret, nil
}

// RemovePartition ID为空时移除虚拟机的全部分区，返回移除的数量
func (hv *HyperV) RemovePartition(ctx context.Context, vmNameOrID, ID string) (int, error) {
	n := 0
	err := hv.withVirtualMachine(ctx, vmNameOrID, "移除GPU分区", func(vm *virtualmachine.VirtualMachine) error {
		if ID == "" {
			var err error
			n, err = gpu.RemoveAllPartitions(ctx, vm)
			return err
		}
		if err := gpu.RemovePartition(ctx, vm, ID); err != nil {
			return err
		}
		n = 1
		return nil
	})
	if err != nil {
		return n, err
	}
	hv.Cache.Clean(cache.Gpus)
	return n, nil
}

func (hv *HyperV) GetMmio(ctx context.Context, vmNameOrID string) (*gpu.Mmio, error) {
	vm, err := hv.getVirtualMachine(ctx, vmNameOrID)
	if err != nil {
		return nil, err
	}
	return gpu.GetMmio(ctx, vm)
}

func (hv *HyperV) ConfigureMmio(ctx context.Context, vmNameOrID string, p protocol.MmioReq) (*gpu.Mmio, error) {
	low, err := utils.ParseSize(p.Low)
	if err != nil {
		return nil, errs.Newf(errs.InvalidParameter, "configure mmio", "无效的MMIO大小: %s", p.Low)
	}
	high, err := utils.ParseSize(p.High)
	if err != nil {
		return nil, errs.Newf(errs.InvalidParameter, "configure mmio", "无效的MMIO大小: %s", p.High)
	}
	var ret *gpu.Mmio
	err = hv.withVirtualMachine(ctx, vmNameOrID, "配置MMIO", func(vm *virtualmachine.VirtualMachine) error {
		if err := gpu.ConfigureMmio(ctx, vm, low, high); err != nil {
			return err
		}
		ret, err = gpu.GetMmio(ctx, vm)
		return err
	})
	return ret, err
}

func (hv *HyperV) QueryDevices(ctx context.Context) ([]gpu.Device, error) {
	if v := hv.Cache.GetDevices(); v != nil {
		logging.L().Debug("本次查询使用了缓存")
		return v, nil
	}
	ds, err := gpu.Devices(ctx, hv.Api)
	if err != nil {
		return nil, err
	}
	hv.Cache.CacheDevices(ds)
	return ds, nil
}

func (hv *HyperV) DismountDevice(ctx context.Context, locationPath string) (*gpu.Device, error) {
	return hv.deviceChange(ctx, locationPath, gpu.Dismount)
}

func (hv *HyperV) MountDevice(ctx context.Context, locationPath string) (*gpu.Device, error) {
	return hv.deviceChange(ctx, locationPath, gpu.Mount)
}

func (hv *HyperV) deviceChange(ctx context.Context, locationPath string, f func(context.Context, *helper.API, string) error) (*gpu.Device, error) {
	if err := f(ctx, hv.Api, locationPath); err != nil {
		return nil, err
	}
	hv.Cache.Clean(cache.Devices)
	return gpu.GetDevice(ctx, hv.Api, locationPath)
}

func (hv *HyperV) QueryVmDevices(ctx context.Context, vmNameOrID string) ([]gpu.VmDevice, error) {
	vm, err := hv.getVirtualMachine(ctx, vmNameOrID)
	if err != nil {
		return nil, err
	}
	return gpu.ListVmDevices(ctx, vm)
}

func (hv *HyperV) AssignDevice(ctx context.Context, vmNameOrID, locationPath string) error {
	err := hv.withVirtualMachine(ctx, vmNameOrID, "分配直通设备", func(vm *virtualmachine.VirtualMachine) error {
		_, err := gpu.AddDevice(ctx, vm, locationPath)
		return err
	})
	if err == nil {
		hv.Cache.Clean(cache.Devices)
	}
	return err
}

func (hv *HyperV) RemoveDevice(ctx context.Context, vmNameOrID, locationPath string) error {
	err := hv.withVirtualMachine(ctx, vmNameOrID, "移除直通设备", func(vm *virtualmachine.VirtualMachine) error {
		return gpu.RemoveDevice(ctx, vm, locationPath)
	})
	if err == nil {
		hv.Cache.Clean(cache.Devices)
	}
	return err
}
