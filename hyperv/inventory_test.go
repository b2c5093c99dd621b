package hyperv

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper/disk"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/network"
	"hyperv-facade/hyperv/protocol"
	"testing"
)

func TestSwitchLifecycle(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	s, err := hv.CreateSwitch(ctx, protocol.SwitchReq{Name: "isolated"})
	require.NoError(t, err)
	assert.Equal(t, network.SwitchPrivate, s.Type)

	all, err := hv.QuerySwitches(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	name, notes := "isolated-2", "test"
	u, err := hv.UpdateSwitch(ctx, s.ID, protocol.SwitchUpdateReq{Name: &name, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "isolated-2", u.Name)
	assert.Equal(t, "test", u.Notes)

	require.NoError(t, hv.DeleteSwitch(ctx, s.ID))
	_, err = hv.GetSwitch(ctx, s.ID)
	assert.True(t, errs.IsKind(err, errs.NotFound))
}

func TestVhd(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	info, err := hv.CreateVhd(ctx, protocol.VhdReq{Path: `C:\VMs\data.vhd`, Type: disk.TypeFixed, Size: "10GB"})
	require.NoError(t, err)
	assert.Equal(t, disk.FormatVhd, info.Format)

	got, err := hv.GetVhd(ctx, `C:\VMs\data.vhd`)
	require.NoError(t, err)
	assert.Equal(t, info.MaxInternalSize, got.MaxInternalSize)

	diff, err := hv.CreateDifferencingVhd(ctx, `C:\VMs\web01-diff.vhdx`, `C:\VMs\web01.vhdx`)
	require.NoError(t, err)
	assert.Equal(t, disk.TypeDifferencing, diff.Type)
}

func TestSnapshots(t *testing.T) {
	_, hv := newHyperV(t)
	ctx := context.Background()

	s, err := hv.CreateSnapshot(ctx, "db01", "before-upgrade")
	require.NoError(t, err)
	assert.Equal(t, "before-upgrade", s.Name)

	list, err := hv.QuerySnapshots(ctx, "db01")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	r, err := hv.RenameSnapshot(ctx, "db01", s.ID, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "baseline", r.Name)

	require.NoError(t, hv.ApplySnapshot(ctx, "db01", s.ID))
	require.NoError(t, hv.DeleteSnapshot(ctx, "db01", s.ID))
	_, err = hv.GetSnapshot(ctx, "db01", s.ID)
	assert.True(t, errs.IsKind(err, errs.NotFound))
}
