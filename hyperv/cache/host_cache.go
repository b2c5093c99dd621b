package cache

import (
	"fmt"
	"hyperv-facade/app/cache"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"strings"
)

const RefreshTicker = "RefreshTicker"

var ignoreItems []string

// HostCache 按主机连接隔离的清单缓存，键为"<主机>::<数据项>"
type HostCache struct {
	HostID string
}

func Setup() {
	ignoreItems = append([]string{}, config.G.Hyperv.Cache.Ignore...)
}

func (c HostCache) Get(k string) (interface{}, bool) {
	if config.G.Hyperv.Cache.Enable {
		return cache.INST.Get(key(c.HostID, k))
	}
	return nil, false
}

// Set 已存在的项不覆盖，刷新时先CleanAll
func (c HostCache) Set(k string, v interface{}) {
	if !config.G.Hyperv.Cache.Enable || ignore(k) {
		return
	}
	ck := key(c.HostID, k)
	if _, b := cache.INST.Get(ck); !b {
		cache.INST.Set(ck, v, -1)
	}
}

func (c HostCache) CleanAll() {
	logging.L().Debug(fmt.Sprintf("清除主机[%s]下所有缓存数据", c.HostID))
	prefix := c.HostID + "::"
	for k := range cache.INST.Items() {
		if strings.HasPrefix(k, prefix) && !strings.HasSuffix(k, RefreshTicker) {
			cache.INST.Delete(k)
		}
	}
}

func (c HostCache) Clean(keys ...string) {
	if len(keys) > 0 {
		logging.L().Debug(fmt.Sprintf("清除主机[%s]缓存数据: %v", c.HostID, keys))
		for _, k := range keys {
			cache.INST.Delete(key(c.HostID, k))
		}
	}
}

func key(hostID, t string) string {
	return fmt.Sprintf("%s::%s", hostID, t)
}

func ignore(k string) bool {
	for _, i := range ignoreItems {
		if strings.EqualFold(i, k) {
			return true
		}
	}
	return false
}
