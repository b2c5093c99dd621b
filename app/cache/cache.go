package cache

import (
	"github.com/patrickmn/go-cache"
	"time"
)

const (
	defaultExpiration = 2 * time.Hour
	cleanupInterval   = time.Minute
)

// INST 进程内共享缓存，保存工作池与各主机的清单数据
var INST *cache.Cache

func Setup() {
	if INST != nil {
		INST.Flush()
		return
	}
	INST = cache.New(defaultExpiration, cleanupInterval)
}
