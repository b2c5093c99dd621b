package simhost

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/hostctl"
	"testing"
)

func drain(t *testing.T, h *Host, enum hostctl.Handle) []string {
	var names []string
	for i := 0; ; i++ {
		size, status := h.EnumProbe(context.Background(), enum, i)
		if status == hostctl.StatusNoMoreItems {
			break
		}
		require.Equal(t, hostctl.StatusMoreData, status)
		name, status := h.EnumFetch(context.Background(), enum, i, size)
		require.Equal(t, hostctl.StatusSuccess, status)
		names = append(names, name)
	}
	require.NoError(t, h.CloseEnum(enum))
	return names
}

func TestCluster_enumerate(t *testing.T) {
	ctx := context.Background()
	h := NewDemo("hv01")
	c, err := h.OpenCluster(ctx, "")
	require.NoError(t, err)

	enum, err := h.OpenEnum(ctx, c, hostctl.KindNode)
	require.NoError(t, err)
	assert.Equal(t, []string{"hv-node1", "hv-node2"}, drain(t, h, enum))

	cnt := h.Counters()
	assert.Equal(t, 3, cnt.Probes)
	assert.Equal(t, 2, cnt.Fetches)
	assert.Equal(t, 1, cnt.EnumsClosed)
	assert.Equal(t, 0, h.OpenEnums())
	assert.ErrorIs(t, h.CloseEnum(enum), hostctl.ErrInvalidHandle)
}

func TestCluster_fetchNeedsSize(t *testing.T) {
	ctx := context.Background()
	h := NewDemo("hv01")
	c, _ := h.OpenCluster(ctx, "hv-cluster")
	enum, _ := h.OpenEnum(ctx, c, hostctl.KindGroup)
	_, status := h.EnumFetch(ctx, enum, 0, 1)
	assert.Equal(t, hostctl.StatusMoreData, status)
}

func TestCluster_openMissing(t *testing.T) {
	ctx := context.Background()
	h := NewDemo("hv01")
	_, err := h.OpenCluster(ctx, "other")
	assert.ErrorIs(t, err, hostctl.ErrNotFound)

	c, _ := h.OpenCluster(ctx, "")
	_, err = h.Open(ctx, c, hostctl.KindGroup, "nope")
	assert.ErrorIs(t, err, hostctl.ErrNotFound)
}

func TestCluster_moveGroup(t *testing.T) {
	ctx := context.Background()
	h := NewDemo("hv01")
	c, _ := h.OpenCluster(ctx, "")
	g, err := h.Open(ctx, c, hostctl.KindGroup, "web01")
	require.NoError(t, err)
	n, err := h.Open(ctx, c, hostctl.KindNode, "hv-node1")
	require.NoError(t, err)

	assert.Equal(t, hostctl.StatusIOPending, h.Control(ctx, g, hostctl.ControlMove, n))
	state, owner, err := h.State(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, GroupOnline, state)
	assert.Equal(t, "hv-node1", owner)

	h.FailControl("web01", errInvalidState)
	assert.Equal(t, errInvalidState, h.Control(ctx, g, hostctl.ControlOffline, hostctl.InvalidHandle))
}

func TestCluster_sharedVolume(t *testing.T) {
	ctx := context.Background()
	h := NewDemo("hv01")
	c, _ := h.OpenCluster(ctx, "")
	r, _ := h.Open(ctx, c, hostctl.KindResource, "Cluster Disk 1")
	v, err := h.SharedVolume(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, `C:\ClusterStorage\Volume1`, v.MountPoint)

	assert.Equal(t, hostctl.StatusSuccess, h.Control(ctx, r, hostctl.ControlMaintenanceOn, hostctl.InvalidHandle))
	v, _ = h.SharedVolume(ctx, r)
	assert.True(t, v.InMaintenance)

	ok, err := h.IsPathOnSharedVolume(ctx, `c:\clusterstorage\volume1\vms\web01.vhdx`)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = h.IsPathOnSharedVolume(ctx, `D:\vms`)
	assert.False(t, ok)
}

func mustQuery(t *testing.T, h *Host, q string) []string {
	enum, err := h.ExecQuery(context.Background(), q)
	require.NoError(t, err)
	return drain(t, h, enum)
}

func TestQuery_capabilityWalk(t *testing.T) {
	h := New("hv01")
	pools := mustQuery(t, h, `SELECT * FROM Msvm_ResourcePool WHERE ResourceSubType = 'Microsoft:Hyper-V:Gpu Partition' AND Primordial = TRUE`)
	require.Len(t, pools, 1)

	caps := mustQuery(t, h, `ASSOCIATORS OF {`+pools[0]+`} WHERE AssocClass = Msvm_ElementCapabilities ResultClass = Msvm_AllocationCapabilities`)
	require.Len(t, caps, 1)

	refs := mustQuery(t, h, `REFERENCES OF {`+caps[0]+`} WHERE ResultClass = Msvm_SettingsDefineCapabilities`)
	require.Len(t, refs, 4)
	var roles []uint16
	for _, r := range refs {
		o, err := h.GetObject(context.Background(), r)
		require.NoError(t, err)
		roles = append(roles, o.Uint16("ValueRole"))
	}
	assert.ElementsMatch(t, []uint16{0, 1, 2, 3}, roles)

	h.RemoveDefaultTemplate("Microsoft:Hyper-V:Gpu Partition")
	assert.Len(t, mustQuery(t, h, `REFERENCES OF {`+caps[0]+`} WHERE ResultClass = Msvm_SettingsDefineCapabilities`), 3)
}

func TestQuery_invalid(t *testing.T) {
	h := New("hv01")
	_, err := h.ExecQuery(context.Background(), "DELETE FROM Msvm_ResourcePool")
	assert.Error(t, err)
	_, err = h.ExecQuery(context.Background(), "SELECT * FROM Msvm_ResourcePool WHERE Primordial")
	assert.Error(t, err)
}

func TestQuery_quotedLiteral(t *testing.T) {
	h := New("hv01")
	h.AddVM("o'brien", VMOff)
	assert.Len(t, mustQuery(t, h, `SELECT * FROM Msvm_ComputerSystem WHERE ElementName = 'o''brien'`), 1)
	assert.Len(t, mustQuery(t, h, `SELECT * FROM Msvm_ComputerSystem WHERE Caption != 'Virtual Machine'`), 1)
}

func vmms(t *testing.T, h *Host) string {
	paths := mustQuery(t, h, `SELECT * FROM Msvm_VirtualSystemManagementService`)
	require.Len(t, paths, 1)
	return paths[0]
}

func TestMethod_requestStateChangeJob(t *testing.T) {
	ctx := context.Background()
	h := New("hv01")
	vm := h.AddVM("vm1", VMOff)

	out, err := h.ExecMethod(ctx, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": VMRunning})
	require.NoError(t, err)
	require.Equal(t, hostctl.ReturnJobStarted, out.Uint32("ReturnValue"))
	assert.Equal(t, VMStarting, h.VMState("vm1"))

	jobPath := out.String("Job")
	j, err := h.GetObject(ctx, jobPath)
	require.NoError(t, err)
	assert.Equal(t, jobRunning, j.Uint16("JobState"))
	j, _ = h.GetObject(ctx, jobPath)
	assert.Equal(t, jobCompleted, j.Uint16("JobState"))
	assert.Equal(t, VMRunning, h.VMState("vm1"))

	out, err = h.ExecMethod(ctx, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": VMRunning})
	require.NoError(t, err)
	assert.Equal(t, hostctl.ReturnInvalidState, out.Uint32("ReturnValue"))
	assert.Equal(t, 2, h.Calls("RequestStateChange"))
}

func TestMethod_failJob(t *testing.T) {
	ctx := context.Background()
	h := New("hv01")
	h.SetJobPolls(0)
	vm := h.AddVM("vm1", VMRunning)
	h.FailJob("RequestStateChange", 32768, "guest refused")

	out, err := h.ExecMethod(ctx, vm.Path, "RequestStateChange", hostctl.Params{"RequestedState": VMPaused})
	require.NoError(t, err)
	j, err := h.GetObject(ctx, out.String("Job"))
	require.NoError(t, err)
	assert.Equal(t, jobException, j.Uint16("JobState"))
	assert.Equal(t, uint32(32768), j.Uint32("ErrorCode"))
	assert.Equal(t, "guest refused", j.String("ErrorDescription"))
	assert.Equal(t, VMRunning, h.VMState("vm1"))
}

func TestMethod_gpuCapacity(t *testing.T) {
	ctx := context.Background()
	h := New("hv01")
	h.AddVM("vm1", VMOff)
	h.AddGPU(GPU{Name: "gpu0", Partitionable: true, PartitionCount: 1})
	vssd := h.Settings("vm1")
	rs := hostctl.NewObject("Msvm_GpuPartitionSettingData").
		Set("ResourceSubType", subtypeGpuPartition).
		Set("HostResource", []string{"gpu0"})
	in := hostctl.Params{"AffectedConfiguration": vssd.Path, "ResourceSettings": []*hostctl.Object{rs}}

	out, err := h.ExecMethod(ctx, vmms(t, h), "AddResourceSettings", in)
	require.NoError(t, err)
	assert.Equal(t, hostctl.ReturnJobStarted, out.Uint32("ReturnValue"))
	assert.Len(t, h.Resources("vm1", "Msvm_GpuPartitionSettingData"), 1)

	out, err = h.ExecMethod(ctx, vmms(t, h), "AddResourceSettings", in)
	require.NoError(t, err)
	assert.Equal(t, hostctl.ReturnOutOfMemory, out.Uint32("ReturnValue"))
	assert.Len(t, h.Resources("vm1", "Msvm_GpuPartitionSettingData"), 1)
}

func TestMethod_destroyRunningVM(t *testing.T) {
	ctx := context.Background()
	h := New("hv01")
	vm := h.AddVM("vm1", VMRunning)
	out, err := h.ExecMethod(ctx, vmms(t, h), "DestroySystem", hostctl.Params{"AffectedSystem": vm.Path})
	require.NoError(t, err)
	assert.Equal(t, hostctl.ReturnInvalidState, out.Uint32("ReturnValue"))

	h.FailMethod("DestroySystem", hostctl.ReturnAccessDenied)
	out, _ = h.ExecMethod(ctx, vmms(t, h), "DestroySystem", hostctl.Params{"AffectedSystem": vm.Path})
	assert.Equal(t, hostctl.ReturnAccessDenied, out.Uint32("ReturnValue"))
	h.ClearFailures()

	_, err = h.ExecMethod(ctx, "missing", "DestroySystem", nil)
	assert.ErrorIs(t, err, hostctl.ErrNotFound)
}

func TestUnreachable(t *testing.T) {
	ctx := context.Background()
	h := New("hv01")
	h.SetUnreachable(true)
	assert.ErrorIs(t, h.Ping(ctx), hostctl.ErrUnreachable)
	_, err := h.ExecQuery(ctx, "SELECT * FROM Msvm_ComputerSystem")
	assert.ErrorIs(t, err, hostctl.ErrUnreachable)
}
