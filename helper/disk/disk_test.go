package disk

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

func TestGetType(t *testing.T) {
	assert.Equal(t, TypeDynamic, GetType(3))
	assert.Equal(t, "", GetType(9))
	assert.Equal(t, FormatVhdx, GetFormat(3))
	assert.Equal(t, FormatVhd, FormatOfPath(`C:\a.VHD`))
	assert.Equal(t, "", FormatOfPath(`C:\a.img`))
}

func TestGet(t *testing.T) {
	_, api := newAPI()
	info, err := Get(context.Background(), api, `C:\VMs\web01.vhdx`)
	require.NoError(t, err)
	assert.Equal(t, TypeDynamic, info.Type)
	assert.Equal(t, FormatVhdx, info.Format)
	assert.Equal(t, uint64(40*1024*1024*1024), info.MaxInternalSize)

	_, err = Get(context.Background(), api, `C:\VMs\none.vhdx`)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestCreate(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	info, err := Create(ctx, api, CreateSpec{Path: `C:\VMs\data.vhd`, Type: TypeFixed, Size: "10GB"})
	require.NoError(t, err)
	assert.Equal(t, TypeFixed, info.Type)
	assert.Equal(t, FormatVhd, info.Format)
	assert.Equal(t, info.MaxInternalSize, info.FileSize)

	diff, err := CreateDifferencing(ctx, api, `C:\VMs\web01-diff.vhdx`, `C:\VMs\web01.vhdx`)
	require.NoError(t, err)
	assert.Equal(t, TypeDifferencing, diff.Type)
	assert.Equal(t, `C:\VMs\web01.vhdx`, diff.ParentPath)

	host.ResetCounters()
	cases := []CreateSpec{
		{Path: `C:\VMs\x.img`, Size: "1GB"},
		{Path: `C:\VMs\x.vhdx`, Type: "sparse", Size: "1GB"},
		{Path: `C:\VMs\x.vhdx`, Size: "abc"},
		{Path: `C:\VMs\x.vhd`, Size: "4TB"},
		{Path: `C:\VMs\x.vhdx`, Type: TypeDifferencing},
	}
	for _, c := range cases {
		_, err := Create(ctx, api, c)
		assert.Equal(t, errs.InvalidParameter, errs.KindOf(err), c.Path)
	}
	assert.Equal(t, 0, host.Calls("CreateVirtualHardDisk"))

	_, err = Create(ctx, api, CreateSpec{Path: `C:\VMs\web01.vhdx`, Size: "1GB"})
	assert.Equal(t, errs.InvalidParameter, errs.KindOf(err))
}

func TestResize(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	info, err := Resize(ctx, api, `C:\VMs\web01.vhdx`, "60GB")
	require.NoError(t, err)
	assert.Equal(t, uint64(60*1024*1024*1024), info.MaxInternalSize)

	host.ResetCounters()
	_, err = Resize(ctx, api, `C:\VMs\web01.vhdx`, "20GB")
	assert.Equal(t, errs.InvalidParameter, errs.KindOf(err))
	assert.Equal(t, 0, host.Calls("ResizeVirtualHardDisk"))
}

func TestCompactAndMount(t *testing.T) {
	host, api := newAPI()
	ctx := context.Background()
	host.AddVhd(`C:\VMs\fixed.vhdx`, 2, 1024*1024*1024, "")
	_, err := Compact(ctx, api, `C:\VMs\fixed.vhdx`)
	assert.Equal(t, errs.InvalidParameter, errs.KindOf(err))

	require.NoError(t, Mount(ctx, api, `C:\VMs\web01.vhdx`))
	_, err = Compact(ctx, api, `C:\VMs\web01.vhdx`)
	assert.Equal(t, errs.InvalidState, errs.KindOf(err))
	assert.Equal(t, errs.InvalidState, errs.KindOf(Mount(ctx, api, `C:\VMs\web01.vhdx`)))

	require.NoError(t, Dismount(ctx, api, `C:\VMs\web01.vhdx`))
	info, err := Compact(ctx, api, `C:\VMs\web01.vhdx`)
	require.NoError(t, err)
	assert.False(t, info.Attached)
}
