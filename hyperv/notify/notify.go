// Package notify 把异步请求的完成事件发布到redis频道。
package notify

import (
	"context"
	"github.com/redis/go-redis/v9"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/config"
	"time"
)

const defaultChannel = "hyperv-facade:jobs"

type Event struct {
	RequestID string      `json:"requestId"`
	Code      string      `json:"code"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Time      time.Time   `json:"time"`
}

var (
	client  *redis.Client
	channel = defaultChannel
)

func Setup() {
	cfg := config.G.Hyperv.Default.Notify.Redis
	if cfg == nil || cfg.URL == "" {
		logging.L().Debug("未配置redis通知")
		return
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logging.L().Errorf("redis地址[%s]无效，不发送通知: %v", cfg.URL, err)
		return
	}
	if cfg.Channel != "" {
		channel = cfg.Channel
	}
	client = redis.NewClient(opt)
	logging.L().Infof("请求完成事件将发布到redis频道[%s]", channel)
}

func Enabled() bool {
	return client != nil
}

// Publish 未启用时直接返回
func Publish(ctx context.Context, ev Event) error {
	if client == nil {
		return nil
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	err := client.Publish(ctx, channel, utils.ToJson(ev)).Err()
	if err != nil {
		logging.L().Errorf("发布请求[%s]完成事件失败: %v", ev.RequestID, err)
	}
	return err
}

func Close() {
	if client != nil {
		_ = client.Close()
		client = nil
	}
}
