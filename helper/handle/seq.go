package handle

import (
	"context"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
)

// Seq 有限、不可重启的惰性序列。打开失败的项被跳过，
// 只有连接失败会中止整个序列。
type Seq[T any] struct {
	cursor  *Cursor
	open    func(ctx context.Context, name string) (T, error)
	skipped int
}

func NewSeq[T any](cursor *Cursor, open func(ctx context.Context, name string) (T, error)) *Seq[T] {
	return &Seq[T]{cursor: cursor, open: open}
}

func (s *Seq[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		name, ok, err := s.cursor.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		item, err := s.open(ctx, name)
		if err == nil {
			return item, true, nil
		}
		if errs.IsKind(err, errs.ConnectionFailed) {
			_ = s.cursor.Close()
			return zero, false, err
		}
		s.skipped++
		logging.L().Debugf("枚举时跳过无法打开的对象 %s: %v", name, err)
	}
}

// Skipped 被跳过的项数
func (s *Seq[T]) Skipped() int {
	return s.skipped
}

func (s *Seq[T]) Close() error {
	return s.cursor.Close()
}

// Collect 取完所有项并释放游标
func (s *Seq[T]) Collect(ctx context.Context) ([]T, error) {
	defer s.Close()
	var ret []T
	for {
		item, ok, err := s.Next(ctx)
		if err != nil {
			return ret, err
		}
		if !ok {
			return ret, nil
		}
		ret = append(ret, item)
	}
}

// OpenAll 按kind枚举集群对象并逐个打开句柄
func OpenAll(ctx context.Context, cluster *Handle, kind hostctl.Kind) ([]*Handle, error) {
	cursor, err := Enumerate(ctx, cluster, kind)
	if err != nil {
		return nil, err
	}
	raw, _ := cluster.Raw()
	return NewSeq(cursor, func(ctx context.Context, name string) (*Handle, error) {
		return Open(ctx, cluster.host, raw, kind, name)
	}).Collect(ctx)
}

// Query 执行管理查询，逐个读取对象；查询之后消失的对象被跳过
func Query(ctx context.Context, host hostctl.Management, query string) (*Seq[*hostctl.Object], error) {
	enum, err := host.ExecQuery(ctx, query)
	if err != nil {
		return nil, errs.FromHost("query", query, err)
	}
	return NewSeq(NewCursor(host, enum), func(ctx context.Context, path string) (*hostctl.Object, error) {
		o, err := host.GetObject(ctx, path)
		if err != nil {
			return nil, errs.FromHost("get object", path, err)
		}
		return o, nil
	}), nil
}

func QueryAll(ctx context.Context, host hostctl.Management, query string) ([]*hostctl.Object, error) {
	seq, err := Query(ctx, host, query)
	if err != nil {
		return nil, err
	}
	return seq.Collect(ctx)
}

// QueryFirst 返回第一个结果，没有结果时返回 NotFound
func QueryFirst(ctx context.Context, host hostctl.Management, query string) (*hostctl.Object, error) {
	seq, err := Query(ctx, host, query)
	if err != nil {
		return nil, err
	}
	defer seq.Close()
	o, ok, err := seq.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NotFound, "query", query)
	}
	return o, nil
}
