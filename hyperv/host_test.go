package hyperv

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hyperv/protocol"
	"testing"
)

func TestGetHost(t *testing.T) {
	_, hv := newHyperV(t)

	info, err := hv.GetHost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hv-node1", info.Name)
	assert.Equal(t, "hv-cluster", info.Cluster)
	assert.Equal(t, 2, info.VmCount)
	assert.Equal(t, 2, info.GpuCount)
	assert.Equal(t, uint32(8), info.AvailableGpuPartitions)
	assert.NotEmpty(t, info.Pools)
}

func TestQueryVirtualMachines_filter(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	all, err := hv.QueryVirtualMachines(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	running, err := hv.QueryVirtualMachines(ctx, protocol.VirtualMachineQuery{State: "running"})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "web01", running[0].Name)

	named, err := hv.QueryVirtualMachines(ctx, protocol.VirtualMachineQuery{Names: []string{"DB01"}})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, "db01", named[0].Name)
}

func TestGetVirtualMachine(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	info, err := hv.GetVirtualMachine(ctx, "web01")
	require.NoError(t, err)
	assert.Equal(t, "Running", info.State)
	assert.NotEmpty(t, info.ID)
	assert.NotNil(t, info.Disks)

	byID, err := hv.GetVirtualMachine(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "web01", byID.Name)

	_, err = hv.GetVirtualMachine(ctx, "missing")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestRenameVirtualMachine(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	err := hv.RenameVirtualMachine(ctx, "db01", " ")
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))

	require.NoError(t, hv.RenameVirtualMachine(ctx, "db01", "db02"))
	info, err := hv.GetVirtualMachine(ctx, "db02")
	require.NoError(t, err)
	assert.Equal(t, "Off", info.State)
}

func TestGenerationOf(t *testing.T) {
	assert.Equal(t, 2, generationOf("Microsoft:Hyper-V:SubType:2"))
	assert.Equal(t, 1, generationOf("Microsoft:Hyper-V:SubType:1"))
	assert.Equal(t, 0, generationOf(""))
	assert.Equal(t, 0, generationOf("Microsoft:Hyper-V:SubType:x"))
}
