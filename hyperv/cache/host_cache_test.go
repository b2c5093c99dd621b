package cache

import (
	"github.com/stretchr/testify/assert"
	"hyperv-facade/app/cache"
	"hyperv-facade/config"
	"hyperv-facade/hyperv/protocol"
	"testing"
)

func enable(t *testing.T, ignore ...string) {
	cache.Setup()
	config.G.Hyperv.Cache.Enable = true
	config.G.Hyperv.Cache.Ignore = ignore
	Setup()
	t.Cleanup(func() {
		config.G.Hyperv.Cache.Enable = false
		config.G.Hyperv.Cache.Ignore = nil
		Setup()
	})
}

func TestHostCache_setKeepsFirst(t *testing.T) {
	enable(t)
	c := HostCache{HostID: "hv-node1"}
	c.CacheNodes([]protocol.NodeInfo{{Name: "a"}})
	c.CacheNodes([]protocol.NodeInfo{{Name: "b"}})
	assert.Equal(t, "a", c.GetNodes()[0].Name)

	c.Clean(Nodes)
	assert.Nil(t, c.GetNodes())
}

func TestHostCache_isolatedPerHost(t *testing.T) {
	enable(t)
	a := HostCache{HostID: "hv-node1"}
	b := HostCache{HostID: "hv-node10"}
	a.CacheGroups([]protocol.GroupInfo{{Name: "web01"}})
	b.CacheGroups([]protocol.GroupInfo{{Name: "db01"}})
	a.Set(RefreshTicker, "ticker")

	a.CleanAll()
	assert.Nil(t, a.GetGroups())
	assert.Len(t, b.GetGroups(), 1)
	_, ok := a.Get(RefreshTicker)
	assert.True(t, ok)
}

func TestHostCache_ignoreAndDisabled(t *testing.T) {
	enable(t, Gpus)
	c := HostCache{HostID: "hv-node1"}
	c.Set(Gpus, 1)
	_, ok := c.Get(Gpus)
	assert.False(t, ok)

	config.G.Hyperv.Cache.Enable = false
	c.CacheNodes([]protocol.NodeInfo{{Name: "a"}})
	assert.Nil(t, c.GetNodes())
}
