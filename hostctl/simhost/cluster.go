package simhost

import (
	"context"
	"hyperv-facade/hostctl"
	"strings"
)

// 集群接口的Win32错误码
const (
	errInvalidHandle uint32 = 6
	errNotSupported  uint32 = 50
	errInvalidState  uint32 = 5023
)

// 集群状态码
const (
	GroupOnline        int32 = 0
	GroupOffline       int32 = 1
	GroupFailed        int32 = 2
	GroupPartialOnline int32 = 3
	GroupPending       int32 = 4

	ResourceOnline  int32 = 2
	ResourceOffline int32 = 3
	ResourceFailed  int32 = 4

	NodeUp     int32 = 0
	NodeDown   int32 = 1
	NodePaused int32 = 2
)

type simNode struct {
	name  string
	state int32
}

type simGroup struct {
	name  string
	state int32
	owner string
}

type simResource struct {
	name   string
	group  string
	typ    string
	state  int32
	volume *hostctl.VolumeInfo
}

type clusterModel struct {
	name      string
	nodes     []*simNode
	groups    []*simGroup
	resources []*simResource
}

func (c *clusterModel) node(name string) *simNode {
	for _, n := range c.nodes {
		if strings.EqualFold(n.name, name) {
			return n
		}
	}
	return nil
}

func (c *clusterModel) group(name string) *simGroup {
	for _, g := range c.groups {
		if strings.EqualFold(g.name, name) {
			return g
		}
	}
	return nil
}

func (c *clusterModel) resource(name string) *simResource {
	for _, r := range c.resources {
		if strings.EqualFold(r.name, name) {
			return r
		}
	}
	return nil
}

func (c *clusterModel) names(kind hostctl.Kind) []string {
	var ret []string
	switch kind {
	case hostctl.KindNode:
		for _, n := range c.nodes {
			ret = append(ret, n.name)
		}
	case hostctl.KindGroup:
		for _, g := range c.groups {
			ret = append(ret, g.name)
		}
	case hostctl.KindResource:
		for _, r := range c.resources {
			ret = append(ret, r.name)
		}
	}
	return ret
}

// EnableCluster 让主机成为名为name的集群成员
func (h *Host) EnableCluster(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cluster == nil {
		h.cluster = &clusterModel{}
	}
	h.cluster.name = name
}

func (h *Host) AddNode(name string, state int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cluster.nodes = append(h.cluster.nodes, &simNode{name: name, state: state})
}

func (h *Host) AddGroup(name string, state int32, owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cluster.groups = append(h.cluster.groups, &simGroup{name: name, state: state, owner: owner})
}

func (h *Host) AddResource(name, group, typ string, state int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cluster.resources = append(h.cluster.resources, &simResource{name: name, group: group, typ: typ, state: state})
}

// AddSharedVolume 添加一个CSV磁盘资源
func (h *Host) AddSharedVolume(name, group, mountPoint string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cluster.resources = append(h.cluster.resources, &simResource{
		name:  name,
		group: group,
		typ:   "Physical Disk",
		state: ResourceOnline,
		volume: &hostctl.VolumeInfo{
			VolumeName:   `\\?\Volume{` + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + `}\`,
			FriendlyName: name,
			MountPoint:   mountPoint,
		},
	})
}

// SetState 直接改写集群对象的状态与归属，用于模拟未知状态码等情况
func (h *Host) SetState(kind hostctl.Kind, name string, state int32, owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch kind {
	case hostctl.KindNode:
		if n := h.cluster.node(name); n != nil {
			n.state = state
		}
	case hostctl.KindGroup:
		if g := h.cluster.group(name); g != nil {
			g.state, g.owner = state, owner
		}
	case hostctl.KindResource:
		if r := h.cluster.resource(name); r != nil {
			r.state = state
			if g := h.cluster.group(r.group); g != nil {
				g.owner = owner
			}
		}
	}
}

func (h *Host) OpenCluster(_ context.Context, name string) (hostctl.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unreachable {
		return hostctl.InvalidHandle, hostctl.ErrUnreachable
	}
	if h.cluster == nil || (name != "" && !strings.EqualFold(name, h.cluster.name)) {
		return hostctl.InvalidHandle, hostctl.ErrNotFound
	}
	return h.newHandle(ref{kind: hostctl.KindCluster, name: h.cluster.name}), nil
}

func (h *Host) clusterRef(cluster hostctl.Handle) error {
	r, ok := h.handles[cluster]
	if !ok || r.kind != hostctl.KindCluster {
		return hostctl.ErrInvalidHandle
	}
	return nil
}

func (h *Host) ClusterName(_ context.Context, cluster hostctl.Handle) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.clusterRef(cluster); err != nil {
		return "", err
	}
	return h.cluster.name, nil
}

func (h *Host) OpenEnum(_ context.Context, cluster hostctl.Handle, kind hostctl.Kind) (hostctl.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.clusterRef(cluster); err != nil {
		return hostctl.InvalidHandle, err
	}
	return h.newEnum(h.cluster.names(kind)), nil
}

func (h *Host) Open(_ context.Context, cluster hostctl.Handle, kind hostctl.Kind, name string) (hostctl.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.clusterRef(cluster); err != nil {
		return hostctl.InvalidHandle, err
	}
	if h.failOpens[name] {
		return hostctl.InvalidHandle, hostctl.ErrNotFound
	}
	found := ""
	switch kind {
	case hostctl.KindNode:
		if n := h.cluster.node(name); n != nil {
			found = n.name
		}
	case hostctl.KindGroup:
		if g := h.cluster.group(name); g != nil {
			found = g.name
		}
	case hostctl.KindResource:
		if r := h.cluster.resource(name); r != nil {
			found = r.name
		}
	}
	if found == "" {
		return hostctl.InvalidHandle, hostctl.ErrNotFound
	}
	return h.newHandle(ref{kind: kind, name: found}), nil
}

func (h *Host) Close(hd hostctl.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.handles[hd]; !ok {
		return hostctl.ErrInvalidHandle
	}
	delete(h.handles, hd)
	return nil
}

// OpenHandles 尚未关闭的集群句柄数量
func (h *Host) OpenHandles() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handles)
}

func (h *Host) State(_ context.Context, hd hostctl.Handle) (int32, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.handles[hd]
	if !ok {
		return hostctl.StateUnknown, "", hostctl.ErrInvalidHandle
	}
	switch r.kind {
	case hostctl.KindNode:
		if n := h.cluster.node(r.name); n != nil {
			return n.state, "", nil
		}
	case hostctl.KindGroup:
		if g := h.cluster.group(r.name); g != nil {
			return g.state, g.owner, nil
		}
	case hostctl.KindResource:
		if res := h.cluster.resource(r.name); res != nil {
			owner := ""
			if g := h.cluster.group(res.group); g != nil {
				owner = g.owner
			}
			return res.state, owner, nil
		}
	}
	return hostctl.StateUnknown, "", nil
}

func (h *Host) Control(_ context.Context, hd hostctl.Handle, ctl hostctl.Control, target hostctl.Handle) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counters.Controls++
	r, ok := h.handles[hd]
	if !ok {
		return errInvalidHandle
	}
	if code, ok := h.failControls[r.name]; ok {
		return code
	}
	pending := hostctl.StatusIOPending
	if h.syncControls {
		pending = hostctl.StatusSuccess
	}
	switch r.kind {
	case hostctl.KindNode:
		n := h.cluster.node(r.name)
		switch ctl {
		case hostctl.ControlPause:
			if n.state == NodeDown {
				return errInvalidState
			}
			n.state = NodePaused
			return hostctl.StatusSuccess
		case hostctl.ControlResume:
			if n.state == NodePaused {
				n.state = NodeUp
			}
			return hostctl.StatusSuccess
		}
	case hostctl.KindGroup:
		g := h.cluster.group(r.name)
		switch ctl {
		case hostctl.ControlOnline:
			g.state = GroupOnline
			if g.owner == "" {
				g.owner = h.firstUpNode()
			}
			h.setGroupResources(g.name, ResourceOnline)
			return pending
		case hostctl.ControlOffline:
			g.state = GroupOffline
			h.setGroupResources(g.name, ResourceOffline)
			return pending
		case hostctl.ControlMove:
			t, ok := h.handles[target]
			if !ok || t.kind != hostctl.KindNode {
				return errInvalidHandle
			}
			n := h.cluster.node(t.name)
			if n == nil || n.state != NodeUp {
				return errInvalidState
			}
			g.owner = n.name
			return pending
		}
	case hostctl.KindResource:
		res := h.cluster.resource(r.name)
		switch ctl {
		case hostctl.ControlOnline:
			res.state = ResourceOnline
			return pending
		case hostctl.ControlOffline:
			res.state = ResourceOffline
			return pending
		case hostctl.ControlMaintenanceOn, hostctl.ControlMaintenanceOff:
			if res.volume == nil {
				return errNotSupported
			}
			res.volume.InMaintenance = ctl == hostctl.ControlMaintenanceOn
			return hostctl.StatusSuccess
		}
	}
	return errNotSupported
}

func (h *Host) firstUpNode() string {
	for _, n := range h.cluster.nodes {
		if n.state == NodeUp {
			return n.name
		}
	}
	return ""
}

func (h *Host) setGroupResources(group string, state int32) {
	for _, r := range h.cluster.resources {
		if strings.EqualFold(r.group, group) {
			r.state = state
		}
	}
}

func (h *Host) resourceOf(hd hostctl.Handle) (*simResource, error) {
	r, ok := h.handles[hd]
	if !ok || r.kind != hostctl.KindResource {
		return nil, hostctl.ErrInvalidHandle
	}
	res := h.cluster.resource(r.name)
	if res == nil {
		return nil, hostctl.ErrNotFound
	}
	return res, nil
}

func (h *Host) ResourceType(_ context.Context, hd hostctl.Handle) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.resourceOf(hd)
	if err != nil {
		return "", err
	}
	return res.typ, nil
}

func (h *Host) SharedVolume(_ context.Context, hd hostctl.Handle) (*hostctl.VolumeInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, err := h.resourceOf(hd)
	if err != nil {
		return nil, err
	}
	if res.volume == nil {
		return nil, nil
	}
	v := *res.volume
	return &v, nil
}

func (h *Host) IsPathOnSharedVolume(_ context.Context, path string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cluster == nil {
		return false, nil
	}
	p := strings.ToLower(path)
	for _, r := range h.cluster.resources {
		if r.volume == nil || r.volume.MountPoint == "" {
			continue
		}
		if strings.HasPrefix(p, strings.ToLower(r.volume.MountPoint)) {
			return true, nil
		}
	}
	return false, nil
}
