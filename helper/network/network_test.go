package network

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl/simhost"
	"testing"
	"time"
)

func newAPI() (*simhost.Host, *helper.API) {
	host := simhost.NewDemo("hv-node1")
	api := helper.NewAPI("test", host)
	api.Tracker.Interval = time.Millisecond
	return host, api
}

func TestListAndGet(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	all, err := List(ctx, api)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Default Switch", all[0].Name)
	assert.Equal(t, SwitchInternal, all[0].Type)

	byID, err := Get(ctx, api, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Default Switch", byID.Name)

	_, err = Get(ctx, api, "missing")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestCreate(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	s, err := Create(ctx, api, CreateSpec{Name: "lan", Type: SwitchExternal, NetAdapter: "Ethernet0"})
	require.NoError(t, err)
	assert.Equal(t, "Ethernet0", s.NetAdapter)
	assert.NotEmpty(t, s.ID)

	p, err := Create(ctx, api, CreateSpec{Name: "isolated"})
	require.NoError(t, err)
	assert.Equal(t, SwitchPrivate, p.Type)

	host.ResetCounters()
	for _, spec := range []CreateSpec{
		{},
		{Name: "x", Type: "Bridge"},
		{Name: "x", Type: SwitchExternal},
		{Name: "lan", Type: SwitchInternal},
	} {
		_, err := Create(ctx, api, spec)
		assert.Equal(t, errs.InvalidParameter, errs.KindOf(err), spec.Name)
	}
	assert.Equal(t, 0, host.Calls("DefineSystem"))
}

func TestRenameAndDelete(t *testing.T) {
	_, api := newAPI()
	ctx := context.Background()
	s, err := Rename(ctx, api, "Default Switch", "NAT Switch")
	require.NoError(t, err)
	assert.Equal(t, "NAT Switch", s.Name)

	s, err = SetNotes(ctx, api, "NAT Switch", "nat")
	require.NoError(t, err)
	got, err := Get(ctx, api, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "nat", got.Notes)

	require.NoError(t, Delete(ctx, api, s.ID))
	_, err = Get(ctx, api, s.ID)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
	assert.Equal(t, errs.NotFound, errs.KindOf(Delete(ctx, api, s.ID)))
}
