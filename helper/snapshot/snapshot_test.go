package snapshot

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

func vmOf(t *testing.T, name string) (*simhost.Host, *virtualmachine.VirtualMachine) {
	host := simhost.NewDemo("hv-node1")
	api := helper.NewAPI("test", host)
	api.Tracker.Interval = time.Millisecond
	vm, err := virtualmachine.GetByName(context.Background(), api, name)
	require.NoError(t, err)
	return host, vm
}

func TestInstanceIDOf(t *testing.T) {
	assert.Equal(t, "Microsoft:ABC", instanceIDOf(`\\h\root\virtualization\v2:Msvm_VirtualSystemSettingData.InstanceID="Microsoft:ABC"`))
	assert.Equal(t, "plain", instanceIDOf("plain"))
}

func TestCreateAndList(t *testing.T) {
	_, vm := vmOf(t, "db01")
	ctx := context.Background()
	first, err := Create(ctx, vm, "before-upgrade")
	require.NoError(t, err)
	assert.Equal(t, "before-upgrade", first.Name)
	assert.True(t, first.Current)

	second, err := Create(ctx, vm, "")
	require.NoError(t, err)
	assert.Contains(t, second.Name, "db01")
	assert.Equal(t, first.ID, second.ParentID)

	all, err := List(ctx, vm)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].Current)
	assert.True(t, all[1].Current)

	got, err := Get(ctx, vm, "before-upgrade")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = Get(ctx, vm, "nope")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestApply(t *testing.T) {
	host, vm := vmOf(t, "web01")
	ctx := context.Background()
	s, err := Create(ctx, vm, "cp1")
	require.NoError(t, err)

	err = Apply(ctx, vm, s.ID)
	assert.Equal(t, errs.InvalidState, errs.KindOf(err))
	assert.Equal(t, 0, host.Calls("ApplySnapshot"))

	host.SetVMState("web01", simhost.VMOff)
	require.NoError(t, Apply(ctx, vm, s.ID))
}

func TestRenameAndDelete(t *testing.T) {
	_, vm := vmOf(t, "db01")
	ctx := context.Background()
	a, err := Create(ctx, vm, "a")
	require.NoError(t, err)
	b, err := Create(ctx, vm, "b")
	require.NoError(t, err)

	_, err = Rename(ctx, vm, a.ID, " ")
	assert.Equal(t, errs.InvalidParameter, errs.KindOf(err))
	r, err := Rename(ctx, vm, a.ID, "base")
	require.NoError(t, err)
	assert.Equal(t, "base", r.Name)

	require.NoError(t, Delete(ctx, vm, "base"))
	all, err := List(ctx, vm)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Empty(t, all[0].ParentID)
}
