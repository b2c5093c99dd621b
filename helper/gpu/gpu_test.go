package gpu

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hostctl/simhost"
	"testing"
	"time"
)

const (
	a10ID = `PCI\VEN_10DE&DEV_2236&SUBSYS_148210DE&REV_A1\4&1A2B3C4D&0&0000`
	t4    = "PCIROOT(0)#PCI(0300)#PCI(0000)"
	nvme  = "PCIROOT(0)#PCI(0100)#PCI(0000)"
)

func newAPI() (*simhost.Host, *helper.API) {
	host := simhost.NewDemo("hv-node1")
	api := helper.NewAPI("test", host)
	api.Tracker.Interval = time.Millisecond
	return host, api
}

func vmOf(t *testing.T, api *helper.API, name string) *virtualmachine.VirtualMachine {
	vm, err := virtualmachine.GetByName(context.Background(), api, name)
	require.NoError(t, err)
	return vm
}

func TestListPartitionable(t *testing.T) {
	host := simhost.New("hv-node1")
	host.AddGPU(simhost.GPU{Name: "A", FriendlyName: "GPU A", Partitionable: true, PartitionCount: 4})
	host.AddGPU(simhost.GPU{Name: "B", FriendlyName: "GPU B"})
	api := helper.NewAPI("test", host)

	all, err := List(context.Background(), api)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ps, err := ListPartitionable(context.Background(), api)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "A", ps[0].ID)
}

func TestAddPartition_validation(t *testing.T) {
	host, api := newAPI()
	vm := vmOf(t, api, "db01")
	ctx := context.Background()
	cases := []PartitionSettings{
		{},
		{GpuID: a10ID, MinVRAMMB: 1024, MaxVRAMMB: 512},
		{GpuID: a10ID, MinVRAMMB: 256, MaxVRAMMB: 1024, OptimalVRAMMB: 2048},
		{GpuID: a10ID, MinVRAMMB: 8192},
		{GpuID: a10ID, MinVRAMMB: 1 << 44},
		{GpuID: a10ID, MaxVRAMMB: 1 << 44},
		{GpuID: a10ID, OptimalVRAMMB: 1 << 45},
	}
	for _, s := range cases {
		_, err := AddPartition(ctx, vm, s)
		assert.True(t, errs.IsKind(err, errs.InvalidParameter), "%+v: %v", s, err)
	}

	_, err := AddPartition(ctx, vm, PartitionSettings{GpuID: `PCI\VEN_1414&DEV_008E&SUBSYS_00000000&REV_00\000000`})
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
	_, err = AddPartition(ctx, vm, PartitionSettings{GpuID: "missing"})
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.Equal(t, 0, host.Calls("AddResourceSettings"))
}

func TestAddPartition(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	vm := vmOf(t, api, "db01")

	p, err := AddPartition(ctx, vm, PartitionSettings{GpuID: a10ID, MinVRAMMB: 512, MaxVRAMMB: 1024})
	require.NoError(t, err)
	assert.Equal(t, a10ID, p.GpuID)
	assert.Equal(t, Range{Min: 512 << 20, Max: 1024 << 20, Optimal: 1024 << 20}, p.VRAM)
	assert.Equal(t, uint64(100), p.Encode)

	g, err := Get(ctx, api, a10ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), g.PartitionsInUse)

	ps, err := ListPartitions(ctx, vm)
	require.NoError(t, err)
	require.Len(t, ps, 1)

	require.NoError(t, RemovePartition(ctx, vm, p.ID))
	assert.True(t, errs.IsKind(RemovePartition(ctx, vm, p.ID), errs.NotFound))
	g, _ = Get(ctx, api, a10ID)
	assert.Equal(t, uint32(0), g.PartitionsInUse)
}

func TestAddPartition_capacity(t *testing.T) {
	host := simhost.New("hv-node1")
	host.AddGPU(simhost.GPU{Name: "A", Partitionable: true, PartitionCount: 1, MaxPartitionVRAM: 1 << 30})
	host.AddVM("vm1", simhost.VMOff)
	host.AddVM("vm2", simhost.VMOff)
	api := helper.NewAPI("test", host)
	api.Tracker.Interval = time.Millisecond
	ctx := context.Background()

	_, err := AddPartition(ctx, vmOf(t, api, "vm1"), PartitionSettings{GpuID: "A"})
	require.NoError(t, err)
	_, err = AddPartition(ctx, vmOf(t, api, "vm2"), PartitionSettings{GpuID: "A"})
	assert.True(t, errs.IsKind(err, errs.CapacityExceeded))

	s, err := GetSummary(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), s.AvailablePartitions)
	assert.Equal(t, uint32(1), s.PartitionsInUse)
}

func TestAddPartition_runningVM(t *testing.T) {
	_, api := newAPI()
	_, err := AddPartition(context.Background(), vmOf(t, api, "web01"), PartitionSettings{GpuID: a10ID})
	assert.True(t, errs.IsKind(err, errs.InvalidState))
}

func TestRemoveAllPartitions(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	vm := vmOf(t, api, "db01")
	for i := 0; i < 2; i++ {
		_, err := AddPartition(ctx, vm, PartitionSettings{GpuID: a10ID})
		require.NoError(t, err)
	}
	n, err := RemoveAllPartitions(ctx, vm)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	ps, _ := ListPartitions(ctx, vm)
	assert.Empty(t, ps)
}

func TestDevices(t *testing.T) {
	_, api := newAPI()
	ds, err := Devices(context.Background(), api)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	status := map[string]DeviceStatus{}
	for _, d := range ds {
		status[d.LocationPath] = d.Status
	}
	assert.Equal(t, Available, status[t4])
	assert.Equal(t, Mounted, status[nvme])
}

func TestGetDevice(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	d, err := GetDevice(ctx, api, nvme)
	require.NoError(t, err)
	assert.Equal(t, nvme, d.LocationPath)
	assert.Equal(t, Mounted, d.Status)

	g, err := Get(ctx, api, a10ID)
	require.NoError(t, err)
	assert.Equal(t, a10ID, g.ID)

	_, err = GetDevice(ctx, api, "PCIROOT(0)#PCI(0900)")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestAddDevice_mounted(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	vm := vmOf(t, api, "db01")
	require.NoError(t, ConfigureMmio(ctx, vm, 1<<30, 64<<30))
	before, err := ListVmDevices(ctx, vm)
	require.NoError(t, err)

	_, err = AddDevice(ctx, vm, nvme)
	assert.True(t, errs.IsKind(err, errs.PermissionDenied))
	assert.Equal(t, 0, host.Calls("AddResourceSettings"))
	assert.Equal(t, 0, host.Calls("DismountAssignableDevice"))

	after, err := ListVmDevices(ctx, vm)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddDevice_mmio(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	vm := vmOf(t, api, "db01")

	_, err := AddDevice(ctx, vm, t4)
	assert.True(t, errs.IsKind(err, errs.MmioNotConfigured))

	require.NoError(t, ConfigureMmio(ctx, vm, 3<<30, 1<<30))
	_, err = AddDevice(ctx, vm, t4)
	assert.True(t, errs.IsKind(err, errs.MmioNotConfigured))
	assert.Equal(t, 0, host.Calls("AddResourceSettings"))

	require.NoError(t, ConfigureMmio(ctx, vm, 3<<30, 33<<30))
	m, err := GetMmio(ctx, vm)
	require.NoError(t, err)
	assert.Equal(t, &Mmio{GuestControlledCache: true, LowMB: 3072, HighMB: 33792}, m)

	_, err = AddDevice(ctx, vm, t4)
	require.NoError(t, err)
	ds, err := ListVmDevices(ctx, vm)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "NVIDIA Tesla T4", ds[0].Name)

	d, err := GetDevice(ctx, api, t4)
	require.NoError(t, err)
	assert.Equal(t, Assigned, d.Status)
	assert.True(t, errs.IsKind(Mount(ctx, api, t4), errs.InvalidState))

	require.NoError(t, RemoveDevice(ctx, vm, t4))
	require.NoError(t, Mount(ctx, api, t4))
	d, _ = GetDevice(ctx, api, t4)
	assert.Equal(t, Mounted, d.Status)
}

func TestDismount(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	require.NoError(t, Dismount(ctx, api, nvme))
	d, err := GetDevice(ctx, api, nvme)
	require.NoError(t, err)
	assert.Equal(t, Available, d.Status)
	assert.True(t, errs.IsKind(Dismount(ctx, api, nvme), errs.InvalidState))
	_, err = GetDevice(ctx, api, "PCIROOT(9)")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}
