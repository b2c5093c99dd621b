package clus

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/job"
	"hyperv-facade/hostctl"
	"hyperv-facade/hostctl/simhost"
	"testing"
)

func demo(t *testing.T) (*simhost.Host, *Cluster) {
	host := simhost.NewDemo("hv-node1")
	c, err := Open(context.Background(), helper.NewAPI("test", host), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Release() })
	return host, c
}

func TestDecodeGroup(t *testing.T) {
	assert.Equal(t, GroupStatus{State: GroupOnline, Code: 0, Owner: "n1"}, DecodeGroup(0, "n1"))
	assert.Equal(t, GroupPartialOnline, DecodeGroup(3, "").State)

	st := DecodeGroup(hostctl.StateUnknown, "")
	assert.Equal(t, GroupUnknown, st.State)
	assert.Equal(t, int32(0), st.Code)
	assert.Empty(t, st.Owner)

	st = DecodeGroup(77, "n1")
	assert.Equal(t, "Unknown(77)", st.String())
	assert.Empty(t, st.Owner)
}

func TestDecodeResourceAndNode(t *testing.T) {
	assert.Equal(t, ResourceOnlinePending, DecodeResource(129, "n1").State)
	assert.True(t, DecodeResource(130, "").Pending())
	assert.Equal(t, ResourceUnknown, DecodeResource(128, "n1").State)
	assert.Equal(t, NodeJoining, DecodeNode(3).State)
	assert.Equal(t, "Unknown(9)", DecodeNode(9).String())
}

func TestOpen_localCluster(t *testing.T) {
	_, c := demo(t)
	assert.Equal(t, "hv-cluster", c.Name())

	_, err := Open(context.Background(), helper.NewAPI("test", simhost.New("standalone")), "")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestStateAfterOpen(t *testing.T) {
	host, c := demo(t)
	ctx := context.Background()
	host.SetState(hostctl.KindGroup, "web01", 42, "")

	groups, err := c.Groups(ctx)
	require.NoError(t, err)
	defer ReleaseAll(groups)
	require.Len(t, groups, 4)
	for _, g := range groups {
		_, err := g.State(ctx)
		assert.NoError(t, err)
	}

	g, err := c.OpenGroup(ctx, "web01")
	require.NoError(t, err)
	defer g.Release()
	st, err := g.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, GroupUnknown, st.State)
	assert.Equal(t, int32(42), st.Code)
	assert.Empty(t, st.Owner)
}

func TestOpenMissing(t *testing.T) {
	_, c := demo(t)
	_, err := c.OpenNode(context.Background(), "hv-node9")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestGroupOnlineOffline(t *testing.T) {
	host, c := demo(t)
	ctx := context.Background()
	g, err := c.OpenGroup(ctx, "db01")
	require.NoError(t, err)
	defer g.Release()

	o, err := g.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Accepted, o)

	before := host.Counters().Controls
	o, err = g.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Skipped, o)
	assert.Equal(t, before, host.Counters().Controls)

	host.SetState(hostctl.KindGroup, "db01", simhost.GroupPending, "hv-node1")
	_, err = g.Offline(ctx)
	assert.True(t, errs.IsKind(err, errs.InvalidState))
	assert.Equal(t, before, host.Counters().Controls)
}

func TestResourceOnline_pendingIsAccepted(t *testing.T) {
	_, c := demo(t)
	ctx := context.Background()
	r, err := c.OpenResource(ctx, "Virtual Machine db01")
	require.NoError(t, err)
	defer r.Release()

	o, err := r.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Accepted, o)

	st, err := r.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResourceOnline, st.State)
}

func TestResourceOnline_hostFailureKeepsCode(t *testing.T) {
	host, c := demo(t)
	ctx := context.Background()
	host.FailControl("Virtual Machine db01", 5942)
	r, err := c.OpenResource(ctx, "Virtual Machine db01")
	require.NoError(t, err)
	defer r.Release()

	_, err = r.Online(ctx)
	assert.True(t, errs.IsKind(err, errs.OperationFailed))
	assert.Equal(t, uint32(5942), errs.CodeOf(err))
}

func TestNodePauseResume(t *testing.T) {
	host, c := demo(t)
	ctx := context.Background()
	n, err := c.OpenNode(ctx, "hv-node2")
	require.NoError(t, err)
	defer n.Release()

	o, err := n.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Completed, o)
	st, _ := n.State(ctx)
	assert.Equal(t, NodePaused, st.State)

	o, err = n.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Skipped, o)

	o, err = n.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.Completed, o)

	host.SetState(hostctl.KindNode, "hv-node2", simhost.NodeDown, "")
	_, err = n.Pause(ctx)
	assert.True(t, errs.IsKind(err, errs.InvalidState))
}

func TestReleasedHandle(t *testing.T) {
	_, c := demo(t)
	ctx := context.Background()
	n, err := c.OpenNode(ctx, "hv-node1")
	require.NoError(t, err)
	require.NoError(t, n.Release())

	_, err = n.State(ctx)
	assert.True(t, errs.IsKind(err, errs.InvalidState))
	assert.True(t, errs.IsKind(n.Release(), errs.InvalidState))
}

func TestSharedVolumes(t *testing.T) {
	host, c := demo(t)
	ctx := context.Background()
	handles := host.OpenHandles()

	vols, err := c.SharedVolumes(ctx)
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, "Cluster Disk 1", vols[0].Name)
	assert.Equal(t, `C:\ClusterStorage\Volume1`, vols[0].MountPoint)
	assert.Equal(t, "Online", vols[0].State)
	assert.Equal(t, "hv-node1", vols[0].Owner)
	assert.Equal(t, handles, host.OpenHandles())
	assert.Equal(t, 0, host.OpenEnums())

	ok, err := c.IsPathOnSharedVolume(ctx, `c:\clusterstorage\volume1\vms\a.vhdx`)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = c.IsPathOnSharedVolume(ctx, " ")
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
}

func TestMaintenance(t *testing.T) {
	_, c := demo(t)
	ctx := context.Background()
	r, err := c.OpenResource(ctx, "Cluster Disk 1")
	require.NoError(t, err)
	defer r.Release()

	_, err = r.SetMaintenance(ctx, true)
	require.NoError(t, err)
	v, err := r.SharedVolume(ctx)
	require.NoError(t, err)
	assert.True(t, v.InMaintenance)

	ip, err := c.OpenResource(ctx, "Cluster IP Address")
	require.NoError(t, err)
	defer ip.Release()
	_, err = ip.SetMaintenance(ctx, true)
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
}

func TestInfo(t *testing.T) {
	_, c := demo(t)
	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Info{Name: "hv-cluster", NodeCount: 2, GroupCount: 4, ResourceCount: 5}, info)
}
