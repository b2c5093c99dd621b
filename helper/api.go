package helper

import (
	"context"
	"fmt"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/job"
	"hyperv-facade/hostctl"
	"hyperv-facade/hostctl/agent"
	"hyperv-facade/hostctl/simhost"
	"strings"
	"time"
)

var (
	apiCache = cache.New(cache.NoExpiration, 10*time.Minute)
	group    singleflight.Group

	// APITimeout 单次宿主机调用超时
	APITimeout = 30 * time.Second
	// JobTimeout 等待作业的默认超时
	JobTimeout = job.DefaultTimeout
	// PollInterval 作业轮询的初始间隔
	PollInterval = job.DefaultInterval
)

// API 一个宿主机连接
type API struct {
	ID      string
	Driver  string
	Host    hostctl.Host
	Tracker *job.Tracker
}

func Setup() {
	t := config.G.Hyperv.Timeout
	if t.Api > 0 {
		APITimeout = time.Duration(t.Api) * time.Second
	}
	if t.Job > 0 {
		JobTimeout = time.Duration(t.Job) * time.Second
	}
	if t.PollInterval > 0 {
		PollInterval = time.Duration(t.PollInterval) * time.Millisecond
	}
}

// NewAPI 用已有的宿主机实现构建连接
func NewAPI(id string, host hostctl.Host) *API {
	tracker := job.NewTracker(host)
	tracker.Interval = PollInterval
	tracker.Timeout = JobTimeout
	return &API{ID: id, Driver: driverOf(host), Host: host, Tracker: tracker}
}

func driverOf(host hostctl.Host) string {
	if _, ok := host.(*agent.Client); ok {
		return config.DriverAgent
	}
	return config.DriverSim
}

// Init 获取到address的连接，相同地址并发初始化只建立一次连接
func Init(address, token string) (*API, error) {
	logging.L().Debug("初始化主机连接")
	n := time.Now()
	k := cacheKey(address, token)
	if a := getFromCache(k); a != nil {
		logging.L().Debug("获取到缓存连接")
		return a, nil
	}

	v, err, _ := group.Do(k, func() (interface{}, error) {
		if a := getFromCache(k); a != nil {
			return a, nil
		}
		host, err := newHost(address, token)
		if err != nil {
			return nil, err
		}
		ctx, cancel := Context()
		defer cancel()
		if err := host.Ping(ctx); err != nil {
			logging.L().Errorf("连接主机[%s]失败: %v", address, err)
			return nil, errs.Wrap(errs.ConnectionFailed, "connect", address, err)
		}
		a := NewAPI(address, host)
		apiCache.Set(k, a, cache.NoExpiration)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	logging.L().Debug("初始化主机连接完成，耗时: ", time.Since(n))
	return v.(*API), nil
}

func newHost(address, token string) (hostctl.Host, error) {
	switch strings.ToLower(config.G.Hyperv.Host.Driver) {
	case config.DriverAgent:
		if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
			return nil, errs.Newf(errs.InvalidParameter, "connect", "主机代理地址必须是http(s) URL: %s", address)
		}
		return agent.New(address, token, APITimeout), nil
	case config.DriverSim, "":
		return simhost.NewDemo(address), nil
	}
	return nil, errs.Newf(errs.InvalidParameter, "connect", "不支持的主机驱动: %s", config.G.Hyperv.Host.Driver)
}

func getFromCache(k string) *API {
	v, ok := apiCache.Get(k)
	if !ok {
		return nil
	}
	a := v.(*API)
	ctx, cancel := Context()
	defer cancel()
	if err := a.Host.Ping(ctx); err != nil {
		logging.L().Warnf("缓存的主机连接[%s]已失效: %v", a.ID, err)
		apiCache.Delete(k)
		return nil
	}
	return a
}

// Register 直接登记一个连接，测试及内置主机使用
func Register(address, token string, a *API) {
	apiCache.Set(cacheKey(address, token), a, cache.NoExpiration)
}

func Forget(address, token string) {
	apiCache.Delete(cacheKey(address, token))
}

func cacheKey(address, token string) string {
	return fmt.Sprint(address, ":", token)
}

// Context 单次宿主机调用的超时上下文
func Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), APITimeout)
}
