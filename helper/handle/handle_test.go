package handle

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"hyperv-facade/hostctl/simhost"
	"testing"
)

func newCluster(t *testing.T) (*simhost.Host, *Handle) {
	sim := simhost.New("hv01")
	sim.EnableCluster("c1")
	for _, n := range []string{"n1", "n2", "n3"} {
		sim.AddNode(n, simhost.NodeUp)
	}
	c, err := OpenCluster(context.Background(), sim, "")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.Name())
	return sim, c
}

func TestHandle_releaseTwice(t *testing.T) {
	ctx := context.Background()
	sim, c := newCluster(t)
	n, err := Open(ctx, sim, mustRaw(t, c), hostctl.KindNode, "n1")
	require.NoError(t, err)

	require.NoError(t, n.Release())
	assert.True(t, n.Released())
	assert.True(t, errs.IsKind(n.Release(), errs.InvalidState))
	_, err = n.Raw()
	assert.True(t, errs.IsKind(err, errs.InvalidState))
}

func TestHandle_openMissing(t *testing.T) {
	sim, c := newCluster(t)
	_, err := Open(context.Background(), sim, mustRaw(t, c), hostctl.KindNode, "nx")
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func mustRaw(t *testing.T, h *Handle) hostctl.Handle {
	raw, err := h.Raw()
	require.NoError(t, err)
	return raw
}

func TestCursor_roundTripsPerItem(t *testing.T) {
	ctx := context.Background()
	sim, c := newCluster(t)
	sim.ResetCounters()

	handles, err := OpenAll(ctx, c, hostctl.KindNode)
	require.NoError(t, err)
	assert.Len(t, handles, 3)

	cnt := sim.Counters()
	// N次取值，N+1次探测（最后一次得到结束标记）
	assert.Equal(t, 3, cnt.Fetches)
	assert.Equal(t, 4, cnt.Probes)
	assert.Equal(t, 1, cnt.EnumsClosed)
	assert.Equal(t, 0, sim.OpenEnums())
}

func TestCursor_abandonedEarly(t *testing.T) {
	ctx := context.Background()
	sim, c := newCluster(t)
	sim.ResetCounters()

	cursor, err := Enumerate(ctx, c, hostctl.KindNode)
	require.NoError(t, err)
	name, ok, err := cursor.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "n1", name)

	require.NoError(t, cursor.Close())
	require.NoError(t, cursor.Close())
	_, ok, err = cursor.Next(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	cnt := sim.Counters()
	assert.Equal(t, 1, cnt.Probes)
	assert.Equal(t, 1, cnt.Fetches)
	assert.Equal(t, 1, cnt.EnumsClosed)
}

func TestCursor_errorReleases(t *testing.T) {
	ctx := context.Background()
	sim, c := newCluster(t)
	cursor, err := Enumerate(ctx, c, hostctl.KindNode)
	require.NoError(t, err)

	// 枚举上下文被外部关闭后，探测返回无效句柄
	require.NoError(t, sim.CloseEnum(cursor.enum))
	sim.ResetCounters()
	_, ok, err := cursor.Next(ctx)
	assert.False(t, ok)
	assert.Error(t, err)
	first := cursor.Close()
	assert.Equal(t, first, cursor.Close())
	assert.Equal(t, 0, sim.Counters().EnumsClosed)
}

func TestSeq_skipsVanished(t *testing.T) {
	ctx := context.Background()
	sim, c := newCluster(t)
	sim.FailOpen("n2")

	handles, err := OpenAll(ctx, c, hostctl.KindNode)
	require.NoError(t, err)
	var names []string
	for _, h := range handles {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"n1", "n3"}, names)
}

func TestQuery_skipsVanishedObjects(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	a := sim.AddVM("a", simhost.VMOff)
	sim.AddVM("b", simhost.VMOff)

	seq, err := Query(ctx, sim, `SELECT * FROM Msvm_ComputerSystem WHERE Caption = 'Virtual Machine'`)
	require.NoError(t, err)
	sim.Remove(a.Path)
	objs, err := seq.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "b", objs[0].String("ElementName"))
	assert.Equal(t, 1, seq.Skipped())
	assert.Equal(t, 0, sim.OpenEnums())
}

func TestQueryFirst(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	_, err := QueryFirst(ctx, sim, `SELECT * FROM Msvm_ComputerSystem WHERE ElementName = 'none'`)
	assert.True(t, errs.IsKind(err, errs.NotFound))

	sim.AddVM("a", simhost.VMOff)
	o, err := QueryFirst(ctx, sim, `SELECT * FROM Msvm_ComputerSystem WHERE ElementName = 'a'`)
	require.NoError(t, err)
	assert.Equal(t, "a", o.String("ElementName"))
	assert.Equal(t, 0, sim.OpenEnums())
}

func TestSeq_connectionFailureAborts(t *testing.T) {
	ctx := context.Background()
	sim := simhost.New("hv01")
	sim.AddVM("a", simhost.VMOff)
	seq, err := Query(ctx, sim, `SELECT * FROM Msvm_ComputerSystem`)
	require.NoError(t, err)
	sim.SetUnreachable(true)
	_, err = seq.Collect(ctx)
	assert.True(t, errs.IsKind(err, errs.ConnectionFailed))
	assert.Equal(t, 0, sim.OpenEnums())
}
