package hyperv

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/job"
	"testing"
)

func TestClusterInfo(t *testing.T) {
	host, hv := newHyperV(t)
	ctx := context.Background()

	info, err := hv.ClusterInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hv-cluster", info.Name)
	assert.Equal(t, 2, info.NodeCount)
	assert.Equal(t, 4, info.GroupCount)
	assert.Equal(t, 5, info.ResourceCount)

	_, err = hv.ConnectCluster(ctx, "HV-CLUSTER")
	require.NoError(t, err)
	_, err = hv.ConnectCluster(ctx, "other")
	assert.True(t, errs.IsKind(err, errs.NotFound))
	_, err = hv.ConnectCluster(ctx, " ")
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
	assert.Equal(t, 0, host.OpenHandles())
}

func TestQueryNodesAndGroups(t *testing.T) {
	host, hv := newHyperV(t)
	ctx := context.Background()

	nodes, err := hv.QueryNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Up", nodes[0].State)

	groups, err := hv.QueryGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 4)

	g, err := hv.GetGroup(ctx, "web01")
	require.NoError(t, err)
	assert.Equal(t, "Online", g.State)
	assert.Equal(t, "hv-node2", g.Owner)

	_, err = hv.GetGroup(ctx, "missing")
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.Equal(t, 0, host.OpenHandles())
}

func TestMoveGroup_alreadyOwned(t *testing.T) {
	host, hv := newHyperV(t)
	host.ResetCounters()

	res, err := hv.MoveGroup(context.Background(), "web01", "HV-NODE2")
	require.NoError(t, err)
	assert.Equal(t, job.Skipped.String(), res.Outcome)
	assert.Equal(t, 0, host.Counters().Controls)
	assert.Equal(t, 0, host.OpenHandles())
}

func TestMoveGroup_offline(t *testing.T) {
	host, hv := newHyperV(t)
	host.ResetCounters()

	_, err := hv.MoveGroup(context.Background(), "db01", "hv-node2")
	assert.True(t, errs.IsKind(err, errs.InvalidState))
	assert.Equal(t, 0, host.Counters().Controls)
	assert.Equal(t, 0, host.OpenHandles())
}

func TestMoveGroup_accepted(t *testing.T) {
	host, hv := newHyperV(t)
	ctx := context.Background()

	res, err := hv.MoveGroup(ctx, "web01", "hv-node1")
	require.NoError(t, err)
	assert.Equal(t, "move", res.Action)
	assert.Equal(t, job.Accepted.String(), res.Outcome)

	g, err := hv.GetGroup(ctx, "web01")
	require.NoError(t, err)
	assert.Equal(t, "hv-node1", g.Owner)

	host.SetSyncControls(true)
	res, err = hv.MoveGroup(ctx, "web01", "hv-node2")
	require.NoError(t, err)
	assert.Equal(t, job.Completed.String(), res.Outcome)
	assert.Equal(t, 0, host.OpenHandles())
}

func TestMoveGroup_missingNode(t *testing.T) {
	host, hv := newHyperV(t)

	_, err := hv.MoveGroup(context.Background(), "web01", "hv-node9")
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.Equal(t, 0, host.OpenHandles())
}

func TestGroupOnlineOffline(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	res, err := hv.OnlineGroup(ctx, "Cluster Group")
	require.NoError(t, err)
	assert.Equal(t, job.Skipped.String(), res.Outcome)

	res, err = hv.OnlineGroup(ctx, "db01")
	require.NoError(t, err)
	assert.Equal(t, job.Accepted.String(), res.Outcome)

	r, err := hv.GetResource(ctx, "Virtual Machine db01")
	require.NoError(t, err)
	assert.Equal(t, "Online", r.State)
	assert.Equal(t, "Virtual Machine", r.Type)

	res, err = hv.OfflineGroup(ctx, "db01")
	require.NoError(t, err)
	assert.Equal(t, job.Accepted.String(), res.Outcome)
}

func TestPauseResumeNode(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	res, err := hv.PauseNode(ctx, "hv-node1")
	require.NoError(t, err)
	assert.Equal(t, job.Completed.String(), res.Outcome)

	res, err = hv.PauseNode(ctx, "hv-node1")
	require.NoError(t, err)
	assert.Equal(t, job.Skipped.String(), res.Outcome)

	n, err := hv.GetNode(ctx, "hv-node1")
	require.NoError(t, err)
	assert.Equal(t, "Paused", n.State)

	res, err = hv.ResumeNode(ctx, "hv-node1")
	require.NoError(t, err)
	assert.Equal(t, job.Completed.String(), res.Outcome)
}

func TestResources(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	rs, err := hv.QueryResources(ctx)
	require.NoError(t, err)
	assert.Len(t, rs, 5)

	res, err := hv.OfflineResource(ctx, "Virtual Machine web01")
	require.NoError(t, err)
	assert.Equal(t, job.Accepted.String(), res.Outcome)

	res, err = hv.OnlineResource(ctx, "Virtual Machine web01")
	require.NoError(t, err)
	assert.Equal(t, job.Accepted.String(), res.Outcome)
}

func TestSharedVolumes(t *testing.T) {
	host, hv := newHyperV(t)
	ctx := context.Background()

	vs, err := hv.SharedVolumes(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, `C:\ClusterStorage\Volume1`, vs[0].MountPoint)

	check, err := hv.CheckSharedVolumePath(ctx, `C:\ClusterStorage\Volume1\web01\web01.vhdx`)
	require.NoError(t, err)
	assert.True(t, check.OnSharedVolume)
	check, err = hv.CheckSharedVolumePath(ctx, `D:\VMs`)
	require.NoError(t, err)
	assert.False(t, check.OnSharedVolume)
	_, err = hv.CheckSharedVolumePath(ctx, "")
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))

	res, err := hv.SetSharedVolumeMaintenance(ctx, "Cluster Disk 1", true)
	require.NoError(t, err)
	assert.Equal(t, "maintenance on", res.Action)
	vs, err = hv.SharedVolumes(ctx)
	require.NoError(t, err)
	assert.True(t, vs[0].InMaintenance)

	_, err = hv.SetSharedVolumeMaintenance(ctx, "Cluster Name", true)
	assert.True(t, errs.IsKind(err, errs.InvalidParameter))
	assert.Equal(t, 0, host.OpenHandles())
}
