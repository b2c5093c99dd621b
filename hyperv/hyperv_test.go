package hyperv

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/app/cache"
	"hyperv-facade/config"
	"hyperv-facade/helper"
	"hyperv-facade/hostctl/simhost"
	vCache "hyperv-facade/hyperv/cache"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	cache.Setup()
	m.Run()
}

func newHyperV(t *testing.T) (*simhost.Host, *HyperV) {
	host := simhost.NewDemo("hv-node1")
	api := helper.NewAPI(t.Name(), host)
	api.Tracker.Interval = time.Millisecond
	return host, New(api, "")
}

func TestGet_registered(t *testing.T) {
	host := simhost.NewDemo("hv-node1")
	helper.Register("sim://hv-node1", "t", helper.NewAPI("sim://hv-node1", host))
	defer helper.Forget("sim://hv-node1", "t")

	hv, err := Get(Auth{Address: "sim://hv-node1", Token: "t", Cluster: "hv-cluster"})
	require.NoError(t, err)
	assert.Equal(t, "sim://hv-node1", hv.Api.ID)
	assert.Equal(t, "sim://hv-node1", hv.Cache.HostID)
	assert.Equal(t, "hv-cluster", hv.cluster)
}

func TestCreateCache(t *testing.T) {
	config.G.Hyperv.Cache.Enable = true
	config.G.Hyperv.Cache.RefreshDuration = 0
	defer func() { config.G.Hyperv.Cache.Enable = false }()

	host, hv := newHyperV(t)
	hv.CreateCache()
	defer hv.Cache.CleanAll()

	for _, item := range vCache.Items {
		_, ok := hv.Cache.Get(item)
		assert.True(t, ok, item)
	}

	host.ResetCounters()
	vms, err := hv.QueryVirtualMachines(context.Background())
	require.NoError(t, err)
	assert.Len(t, vms, 2)
	assert.Equal(t, 0, host.Counters().Gets)
	assert.Equal(t, 0, host.Counters().Probes)
}
