package hyperv

import (
	"context"
	"golang.org/x/sync/errgroup"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/gpu"
	"hyperv-facade/helper/hostsystem"
	"hyperv-facade/helper/resourcepool"
	"hyperv-facade/hyperv/protocol"
)

// GetHost 宿主机信息、GPU分区余量与资源池，主机不在集群中时Cluster为空
func (hv *HyperV) GetHost(ctx context.Context) (*protocol.HostInfo, error) {
	var (
		host    *hostsystem.HostInfo
		summary *gpu.Summary
		pools   []resourcepool.Pool
		cluster string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		host, err = hostsystem.Get(gctx, hv.Api)
		return
	})
	g.Go(func() (err error) {
		summary, err = gpu.GetSummary(gctx, hv.Api)
		return
	})
	g.Go(func() (err error) {
		pools, err = resourcepool.List(gctx, hv.Api)
		return
	})
	g.Go(func() error {
		info, err := hv.ClusterInfo(gctx)
		if err != nil {
			if errs.IsKind(err, errs.NotFound) {
				logging.L().Debugf("主机[%s]不在集群中", hv.Api.ID)
				return nil
			}
			return err
		}
		cluster = info.Name
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ret := &protocol.HostInfo{
		Name:                       host.Name,
		Driver:                     host.Driver,
		Cluster:                    cluster,
		LogicalProcessors:          host.LogicalProcessors,
		TotalMemory:                host.TotalMemory,
		TotalMemoryHuman:           host.TotalMemoryHuman,
		VmCount:                    host.VmCount,
		VmStates:                   host.VmStates,
		DefaultVirtualHardDiskPath: host.DefaultVirtualHardDiskPath,
		DefaultExternalDataRoot:    host.DefaultExternalDataRoot,
		GpuCount:                   summary.GpuCount,
		AvailableGpuPartitions:     summary.AvailablePartitions,
		Pools:                      make([]string, 0, len(pools)),
	}
	for _, p := range pools {
		ret.Pools = append(ret.Pools, p.Subtype)
	}
	return ret, nil
}

func (hv *HyperV) QueryResourcePools(ctx context.Context) ([]resourcepool.Pool, error) {
	return resourcepool.List(ctx, hv.Api)
}
