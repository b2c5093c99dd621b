package simhost

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"hyperv-facade/hostctl"
	"strings"
)

const namespace = `root\virtualization\v2`

// 作业状态
const (
	jobRunning   uint16 = 4
	jobCompleted uint16 = 7
	jobException uint16 = 10
)

type assoc struct {
	path  string
	class string
	left  string
	right string
}

var assocKeys = map[string][2]string{
	"Msvm_ElementCapabilities":               {"ManagedElement", "Capabilities"},
	"Msvm_SettingsDefineCapabilities":        {"GroupComponent", "PartComponent"},
	"Msvm_SettingsDefineState":               {"ManagedElement", "SettingData"},
	"Msvm_VirtualSystemSettingDataComponent": {"GroupComponent", "PartComponent"},
}

type simJob struct {
	path      string
	remaining int
	fail      *failure
	complete  func()
	done      bool
}

func (h *Host) pathOf(class, key string) string {
	return fmt.Sprintf(`\\%s\%s:%s.InstanceID="%s"`, h.hostname, namespace, class, key)
}

func (h *Host) put(o *hostctl.Object) *hostctl.Object {
	if o.Path == "" {
		o.Path = h.pathOf(o.Class, uuid.NewString())
	}
	if _, ok := h.objects[o.Path]; !ok {
		h.order = append(h.order, o.Path)
	}
	h.objects[o.Path] = o
	return o
}

func (h *Host) remove(path string) {
	if _, ok := h.objects[path]; !ok {
		return
	}
	delete(h.objects, path)
	for i, p := range h.order {
		if p == path {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	kept := h.assocs[:0]
	var dropped []string
	for _, a := range h.assocs {
		if a.left == path || a.right == path {
			dropped = append(dropped, a.path)
			continue
		}
		kept = append(kept, a)
	}
	h.assocs = kept
	for _, p := range dropped {
		h.remove(p)
	}
}

func (h *Host) link(class, left, right string, extra hostctl.Params) *hostctl.Object {
	keys := assocKeys[class]
	o := hostctl.NewObject(class)
	o.Set(keys[0], left).Set(keys[1], right)
	for k, v := range extra {
		o.Set(k, v)
	}
	h.put(o)
	h.assocs = append(h.assocs, &assoc{path: o.Path, class: class, left: left, right: right})
	return o
}

func (h *Host) associators(path, assocClass, resultClass string) []string {
	var ret []string
	seen := map[string]bool{}
	for _, a := range h.assocs {
		if assocClass != "" && !strings.EqualFold(a.class, assocClass) {
			continue
		}
		other := ""
		switch path {
		case a.left:
			other = a.right
		case a.right:
			other = a.left
		default:
			continue
		}
		o, ok := h.objects[other]
		if !ok || seen[other] {
			continue
		}
		if resultClass != "" && !strings.EqualFold(o.Class, resultClass) {
			continue
		}
		seen[other] = true
		ret = append(ret, other)
	}
	return ret
}

func (h *Host) references(path, resultClass string) []string {
	var ret []string
	for _, a := range h.assocs {
		if a.left != path && a.right != path {
			continue
		}
		if resultClass != "" && !strings.EqualFold(a.class, resultClass) {
			continue
		}
		ret = append(ret, a.path)
	}
	return ret
}

func (h *Host) selectObjects(class string, conds []condition) []*hostctl.Object {
	var ret []*hostctl.Object
	for _, p := range h.order {
		o := h.objects[p]
		if !strings.EqualFold(o.Class, class) {
			continue
		}
		matched := true
		for _, c := range conds {
			if !c.match(o.Props) {
				matched = false
				break
			}
		}
		if matched {
			ret = append(ret, o)
		}
	}
	return ret
}

func (h *Host) first(class string, conds ...condition) *hostctl.Object {
	objs := h.selectObjects(class, conds)
	if len(objs) == 0 {
		return nil
	}
	return objs[0]
}

func eq(prop string, v string) condition {
	return condition{prop: prop, literal: v, quoted: true}
}

func (h *Host) ExecQuery(_ context.Context, q string) (hostctl.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unreachable {
		return hostctl.InvalidHandle, hostctl.ErrUnreachable
	}
	parsed, err := parseQuery(q)
	if err != nil {
		return hostctl.InvalidHandle, err
	}
	var paths []string
	switch parsed.kind {
	case querySelect:
		for _, o := range h.selectObjects(parsed.class, parsed.conds) {
			paths = append(paths, o.Path)
		}
	case queryAssociators:
		paths = h.associators(parsed.object, parsed.assocClass, parsed.resultClass)
	case queryReferences:
		paths = h.references(parsed.object, parsed.resultClass)
	}
	return h.newEnum(paths), nil
}

func (h *Host) GetObject(_ context.Context, path string) (*hostctl.Object, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters.Gets++
	if h.unreachable {
		return nil, hostctl.ErrUnreachable
	}
	if j, ok := h.jobs[path]; ok {
		h.advance(j)
	}
	o, ok := h.objects[path]
	if !ok {
		return nil, hostctl.ErrNotFound
	}
	return o.Clone(), nil
}

// Object 读取对象，测试断言用，不计数
func (h *Host) Object(path string) *hostctl.Object {
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.objects[path]; ok {
		return o.Clone()
	}
	return nil
}

// Remove 删除对象及其关联，模拟对象在枚举之后消失
func (h *Host) Remove(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(path)
}

func (h *Host) newJob(method string, fail *failure, complete func()) string {
	id := uuid.NewString()
	o := hostctl.NewObject("Msvm_ConcreteJob").
		Set("InstanceID", id).
		Set("Caption", method).
		Set("JobState", jobRunning).
		Set("PercentComplete", uint16(0)).
		Set("ErrorCode", uint16(0)).
		Set("ErrorDescription", "")
	o.Path = h.pathOf("Msvm_ConcreteJob", id)
	h.put(o)
	h.jobs[o.Path] = &simJob{path: o.Path, remaining: h.jobPolls, fail: fail, complete: complete}
	return o.Path
}

func (h *Host) advance(j *simJob) {
	if j.done {
		return
	}
	o := h.objects[j.path]
	if j.remaining > 0 {
		j.remaining--
		o.Set("PercentComplete", uint16(50))
		return
	}
	j.done = true
	o.Set("PercentComplete", uint16(100))
	if j.fail != nil {
		o.Set("JobState", jobException).
			Set("ErrorCode", j.fail.code).
			Set("ErrorDescription", j.fail.desc)
		return
	}
	o.Set("JobState", jobCompleted)
	if j.complete != nil {
		j.complete()
	}
}

type outcome struct {
	out      hostctl.Params
	async    bool
	complete func()
}

type methodFunc func(h *Host, target *hostctl.Object, in hostctl.Params) (outcome, uint32)

func (h *Host) ExecMethod(_ context.Context, path, method string, in hostctl.Params) (hostctl.Params, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters.Calls[method]++
	if h.unreachable {
		return nil, hostctl.ErrUnreachable
	}
	target, ok := h.objects[path]
	if !ok {
		return nil, hostctl.ErrNotFound
	}
	if f, ok := h.failMethods[method]; ok {
		return hostctl.Params{"ReturnValue": f.code}, nil
	}
	if f, ok := h.failJobs[method]; ok {
		f := f
		return hostctl.Params{"ReturnValue": hostctl.ReturnJobStarted, "Job": h.newJob(method, &f, nil)}, nil
	}
	fn, ok := methods[method]
	if !ok {
		return hostctl.Params{"ReturnValue": hostctl.ReturnNotSupported}, nil
	}
	if in == nil {
		in = hostctl.Params{}
	}
	res, code := fn(h, target, in)
	if code != hostctl.ReturnCompleted {
		return hostctl.Params{"ReturnValue": code}, nil
	}
	out := res.out
	if out == nil {
		out = hostctl.Params{}
	}
	if res.async {
		out["Job"] = h.newJob(method, nil, res.complete)
		out["ReturnValue"] = hostctl.ReturnJobStarted
		return out, nil
	}
	if res.complete != nil {
		res.complete()
	}
	out["ReturnValue"] = hostctl.ReturnCompleted
	return out, nil
}
