// Package handle 宿主机句柄与分步枚举。
//
// Handle 独占一个宿主机句柄，释放后任何使用都返回 InvalidState。
// Cursor 独占一个枚举上下文：枚举结束、出错或提前 Close 时释放，且只释放一次。
// Seq 在 Cursor 之上逐项打开对象，打开失败的项被跳过。
package handle

import (
	"context"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
)

type Handle struct {
	host     hostctl.Cluster
	raw      hostctl.Handle
	kind     hostctl.Kind
	name     string
	released bool
}

// Open 在容器句柄下打开名为name的对象，不存在时返回 NotFound
func Open(ctx context.Context, host hostctl.Cluster, container hostctl.Handle, kind hostctl.Kind, name string) (*Handle, error) {
	raw, err := host.Open(ctx, container, kind, name)
	if err != nil {
		return nil, errs.FromHost("open "+kind.String(), name, err)
	}
	return &Handle{host: host, raw: raw, kind: kind, name: name}, nil
}

// OpenCluster name为空时打开本机所在集群
func OpenCluster(ctx context.Context, host hostctl.Cluster, name string) (*Handle, error) {
	raw, err := host.OpenCluster(ctx, name)
	if err != nil {
		return nil, errs.FromHost("open Cluster", name, err)
	}
	if name == "" {
		if name, err = host.ClusterName(ctx, raw); err != nil {
			_ = host.Close(raw)
			return nil, errs.FromHost("cluster name", "", err)
		}
	}
	return &Handle{host: host, raw: raw, kind: hostctl.KindCluster, name: name}, nil
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Kind() hostctl.Kind {
	return h.kind
}

func (h *Handle) Host() hostctl.Cluster {
	return h.host
}

// Raw 返回宿主机句柄，释放后返回 InvalidState
func (h *Handle) Raw() (hostctl.Handle, error) {
	if h.released {
		return hostctl.InvalidHandle, errs.New(errs.InvalidState, "use released handle", h.name)
	}
	return h.raw, nil
}

func (h *Handle) Released() bool {
	return h.released
}

// Release 关闭宿主机句柄，重复释放返回 InvalidState
func (h *Handle) Release() error {
	if h.released {
		return errs.New(errs.InvalidState, "release released handle", h.name)
	}
	h.released = true
	if err := h.host.Close(h.raw); err != nil {
		return errs.FromHost("close "+h.kind.String(), h.name, err)
	}
	return nil
}
