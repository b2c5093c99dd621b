// Package simhost 进程内模拟宿主机，实现 hostctl.Host。
//
// 用于 driver: sim 以及各包测试：集群部分保存节点、组、资源的状态，
// 管理部分保存对象、关联与异步作业。所有调用都会计数，便于断言
// 枚举往返次数、游标释放次数以及方法调用次数；也支持按方法注入失败。
package simhost

import (
	"context"
	"hyperv-facade/hostctl"
	"sync"
)

var _ hostctl.Host = (*Host)(nil)

type Counters struct {
	Probes      int
	Fetches     int
	EnumsOpened int
	EnumsClosed int
	Gets        int
	Controls    int
	Calls       map[string]int
}

type failure struct {
	code uint32
	desc string
}

type ref struct {
	kind hostctl.Kind
	name string
}

type Host struct {
	mu       sync.Mutex
	hostname string
	next     uint64
	handles  map[hostctl.Handle]ref
	enums    map[hostctl.Handle][]string
	cluster  *clusterModel

	objects map[string]*hostctl.Object
	order   []string
	assocs  []*assoc
	jobs    map[string]*simJob

	counters     Counters
	failMethods  map[string]failure
	failJobs     map[string]failure
	failControls map[string]uint32
	failOpens    map[string]bool
	unreachable  bool
	jobPolls     int
	syncControls bool
}

// New 创建只带管理服务和资源池的空主机
func New(hostname string) *Host {
	h := &Host{
		hostname:     hostname,
		handles:      map[hostctl.Handle]ref{},
		enums:        map[hostctl.Handle][]string{},
		objects:      map[string]*hostctl.Object{},
		jobs:         map[string]*simJob{},
		counters:     Counters{Calls: map[string]int{}},
		failMethods:  map[string]failure{},
		failJobs:     map[string]failure{},
		failControls: map[string]uint32{},
		failOpens:    map[string]bool{},
		jobPolls:     1,
	}
	h.seedServices()
	return h
}

func (h *Host) Hostname() string {
	return h.hostname
}

func (h *Host) Ping(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unreachable {
		return hostctl.ErrUnreachable
	}
	return nil
}

// Counters 返回计数快照
func (h *Host) Counters() Counters {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.counters
	c.Calls = make(map[string]int, len(h.counters.Calls))
	for k, v := range h.counters.Calls {
		c.Calls[k] = v
	}
	return c
}

func (h *Host) Calls(method string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counters.Calls[method]
}

// OpenEnums 尚未关闭的枚举上下文数量
func (h *Host) OpenEnums() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.enums)
}

func (h *Host) ResetCounters() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters = Counters{Calls: map[string]int{}}
}

// FailMethod 之后对method的调用直接返回code，不产生任何变更
func (h *Host) FailMethod(method string, code uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failMethods[method] = failure{code: code}
}

// FailJob 之后对method的调用会启动作业，作业以code和desc失败结束
func (h *Host) FailJob(method string, code uint32, desc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failJobs[method] = failure{code: code, desc: desc}
}

// FailControl 之后对名为name的集群对象的控制调用返回code
func (h *Host) FailControl(name string, code uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failControls[name] = code
}

// FailOpen 模拟枚举之后对象消失
func (h *Host) FailOpen(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failOpens[name] = true
}

func (h *Host) ClearFailures() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failMethods = map[string]failure{}
	h.failJobs = map[string]failure{}
	h.failControls = map[string]uint32{}
	h.failOpens = map[string]bool{}
}

func (h *Host) SetUnreachable(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unreachable = v
}

// SetJobPolls 作业在第n+1次读取时进入终态
func (h *Host) SetJobPolls(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobPolls = n
}

// SetSyncControls 集群控制调用直接返回成功而不是997
func (h *Host) SetSyncControls(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncControls = v
}

func (h *Host) newHandle(r ref) hostctl.Handle {
	h.next++
	hd := hostctl.Handle(h.next)
	h.handles[hd] = r
	return hd
}

func (h *Host) newEnum(names []string) hostctl.Handle {
	h.next++
	hd := hostctl.Handle(h.next)
	h.enums[hd] = append([]string{}, names...)
	h.counters.EnumsOpened++
	return hd
}

func (h *Host) EnumProbe(_ context.Context, enum hostctl.Handle, index int) (int, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters.Probes++
	names, ok := h.enums[enum]
	if !ok {
		return 0, errInvalidHandle
	}
	if index < 0 || index >= len(names) {
		return 0, hostctl.StatusNoMoreItems
	}
	// 含结尾的空字符
	return len(names[index]) + 1, hostctl.StatusMoreData
}

func (h *Host) EnumFetch(_ context.Context, enum hostctl.Handle, index int, size int) (string, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters.Fetches++
	names, ok := h.enums[enum]
	if !ok {
		return "", errInvalidHandle
	}
	if index < 0 || index >= len(names) {
		return "", hostctl.StatusNoMoreItems
	}
	if size < len(names[index])+1 {
		return "", hostctl.StatusMoreData
	}
	return names[index], hostctl.StatusSuccess
}

func (h *Host) CloseEnum(enum hostctl.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.enums[enum]; !ok {
		return hostctl.ErrInvalidHandle
	}
	delete(h.enums, enum)
	h.counters.EnumsClosed++
	return nil
}
