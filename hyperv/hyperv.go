package hyperv

import (
	"context"
	"fmt"
	"golang.org/x/sync/errgroup"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"hyperv-facade/helper"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/workerpool"
	"time"
)

type Auth struct {
	Address string `json:"address" valid:"Required"`
	Token   string `json:"token,omitempty"`
	// Cluster 为空时使用配置中的集群，再为空则打开主机所在集群
	Cluster string `json:"cluster,omitempty"`
}

type HyperV struct {
	Api   *helper.API
	Cache *cache.HostCache

	cluster string
}

func Get(a Auth) (*HyperV, error) {
	api, err := helper.Init(a.Address, a.Token)
	if err != nil {
		return nil, err
	}
	return New(api, a.Cluster), nil
}

// New 使用已建立的连接
func New(api *helper.API, cluster string) *HyperV {
	if cluster == "" {
		cluster = config.G.Hyperv.Host.Cluster
	}
	return &HyperV{
		Api:     api,
		Cache:   &cache.HostCache{HostID: api.ID},
		cluster: cluster,
	}
}

// JobContext 提交并等待作业的上下文，超时为作业超时加一次调用超时
func JobContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), helper.JobTimeout+helper.APITimeout)
}

func (hv *HyperV) CreateCache() {
	if config.G.Hyperv.Cache.Enable {
		logging.L().Debug(fmt.Sprintf("为主机[%s]创建缓存数据开始", hv.Api.ID))
		hv.createCache()
		hv.CreateCacheTicker()
		logging.L().Debug(fmt.Sprintf("为主机[%s]创建缓存数据完成", hv.Api.ID))
	} else {
		logging.L().Debug("未开启缓存配置")
	}
}

// createCache 各数据项并发加载，单项失败只记录日志
func (hv *HyperV) createCache() {
	hv.Cache.CleanAll()
	ctx, cancel := helper.Context()
	defer cancel()

	loaders := map[string]func(context.Context) error{
		cache.VirtualMachines: func(ctx context.Context) error { _, err := hv.QueryVirtualMachines(ctx); return err },
		cache.Switches:        func(ctx context.Context) error { _, err := hv.QuerySwitches(ctx); return err },
		cache.Gpus:            func(ctx context.Context) error { _, err := hv.QueryGpus(ctx); return err },
		cache.Devices:         func(ctx context.Context) error { _, err := hv.QueryDevices(ctx); return err },
		cache.Nodes:           func(ctx context.Context) error { _, err := hv.QueryNodes(ctx); return err },
		cache.Groups:          func(ctx context.Context) error { _, err := hv.QueryGroups(ctx); return err },
	}
	var g errgroup.Group
	g.SetLimit(len(cache.Items))
	for _, item := range cache.Items {
		item, load := item, loaders[item]
		g.Go(func() error {
			if err := load(ctx); err != nil {
				logging.L().Warnf("主机[%s]缓存数据项[%s]加载失败: %v", hv.Api.ID, item, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (hv *HyperV) AddTask(t workerpool.WorkerType, task func()) error {
	return workerpool.AddTask(hv.Api.ID, t, task)
}

func (hv *HyperV) CreateCacheTicker() {
	refreshDuration := config.G.Hyperv.Cache.RefreshDuration
	if refreshDuration > 0 {
		logging.L().Debugf("为主机[%s]创建缓存刷新定时器，刷新间隔设置为: %dm", hv.Api.ID, refreshDuration)
		_, exists := hv.Cache.Get(cache.RefreshTicker)
		if exists {
			logging.L().Debug("定时器已经存在，跳过")
			return
		}
		ticker := time.NewTicker(time.Minute * time.Duration(refreshDuration))
		hv.Cache.Set(cache.RefreshTicker, ticker)
		go func() {
			for range ticker.C {
				logging.L().Debugf("刷新主机[%s]缓存", hv.Api.ID)
				hv.createCache()
			}
		}()
	} else {
		logging.L().Debugf("[refreshDuration: %d]刷新间隔设置小于0，跳过缓存刷新定时器创建", refreshDuration)
	}
}

func (hv *HyperV) StopTicker() {
	logging.L().Debugf("停止主机[%s]缓存刷新定时器", hv.Api.ID)
	ticker, exists := hv.Cache.Get(cache.RefreshTicker)
	if exists {
		ticker.(*time.Ticker).Stop()
		hv.Cache.Clean(cache.RefreshTicker)
		logging.L().Debugf("主机[%s]缓存刷新定时器已停止", hv.Api.ID)
	} else {
		logging.L().Debug("定时器不存在，跳过")
	}
}
