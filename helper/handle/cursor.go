package handle

import (
	"context"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"sync"
)

// Cursor 单次使用的枚举游标，不可在协程间共享
type Cursor struct {
	host     hostctl.Enumerator
	enum     hostctl.Handle
	index    int
	done     bool
	once     sync.Once
	closeErr error
}

func NewCursor(host hostctl.Enumerator, enum hostctl.Handle) *Cursor {
	return &Cursor{host: host, enum: enum}
}

// Enumerate 打开集群下kind类型对象的名称枚举
func Enumerate(ctx context.Context, cluster *Handle, kind hostctl.Kind) (*Cursor, error) {
	raw, err := cluster.Raw()
	if err != nil {
		return nil, err
	}
	enum, err := cluster.host.OpenEnum(ctx, raw, kind)
	if err != nil {
		return nil, errs.FromHost("enumerate "+kind.String(), cluster.name, err)
	}
	return NewCursor(cluster.host, enum), nil
}

// Next 每项一次探测加一次取值；没有更多项时返回ok=false并释放游标
func (c *Cursor) Next(ctx context.Context) (name string, ok bool, err error) {
	if c.done {
		return "", false, nil
	}
	size, status := c.host.EnumProbe(ctx, c.enum, c.index)
	switch status {
	case hostctl.StatusNoMoreItems:
		return "", false, c.finish()
	case hostctl.StatusMoreData, hostctl.StatusSuccess:
	default:
		_ = c.finish()
		return "", false, errs.FromCode("enumerate probe", "", status, "")
	}
	name, status = c.host.EnumFetch(ctx, c.enum, c.index, size)
	if status != hostctl.StatusSuccess {
		_ = c.finish()
		return "", false, errs.FromCode("enumerate fetch", "", status, "")
	}
	c.index++
	return name, true, nil
}

func (c *Cursor) finish() error {
	c.done = true
	c.once.Do(func() {
		if err := c.host.CloseEnum(c.enum); err != nil {
			c.closeErr = errs.FromHost("close enumeration", "", err)
		}
	})
	return c.closeErr
}

// Close 提前放弃枚举，可重复调用
func (c *Cursor) Close() error {
	return c.finish()
}
