package clus

import (
	"fmt"
	"hyperv-facade/hostctl"
)

type GroupState int

const (
	GroupUnknown GroupState = iota
	GroupOnline
	GroupOffline
	GroupFailed
	GroupPartialOnline
	GroupPending
)

var groupStateNames = []string{"Unknown", "Online", "Offline", "Failed", "PartialOnline", "Pending"}

func (s GroupState) String() string {
	return groupStateNames[s]
}

// GroupStatus 组状态；State为Unknown时Code为宿主机原始值，Owner为空
type GroupStatus struct {
	State GroupState `json:"state"`
	Code  int32      `json:"code"`
	Owner string     `json:"owner,omitempty"`
}

func (s GroupStatus) String() string {
	if s.State == GroupUnknown {
		return fmt.Sprintf("Unknown(%d)", s.Code)
	}
	return s.State.String()
}

func DecodeGroup(code int32, owner string) GroupStatus {
	var st GroupState
	switch code {
	case 0:
		st = GroupOnline
	case 1:
		st = GroupOffline
	case 2:
		st = GroupFailed
	case 3:
		st = GroupPartialOnline
	case 4:
		st = GroupPending
	default:
		if code == hostctl.StateUnknown {
			code = 0
		}
		return GroupStatus{State: GroupUnknown, Code: code}
	}
	return GroupStatus{State: st, Code: code, Owner: owner}
}

type ResourceState int

const (
	ResourceUnknown ResourceState = iota
	ResourceOnline
	ResourceOffline
	ResourceFailed
	ResourceOnlinePending
	ResourceOfflinePending
)

var resourceStateNames = []string{"Unknown", "Online", "Offline", "Failed", "OnlinePending", "OfflinePending"}

func (s ResourceState) String() string {
	return resourceStateNames[s]
}

type ResourceStatus struct {
	State ResourceState `json:"state"`
	Code  int32         `json:"code"`
	Owner string        `json:"owner,omitempty"`
}

func (s ResourceStatus) String() string {
	if s.State == ResourceUnknown {
		return fmt.Sprintf("Unknown(%d)", s.Code)
	}
	return s.State.String()
}

func (s ResourceStatus) Pending() bool {
	return s.State == ResourceOnlinePending || s.State == ResourceOfflinePending
}

func DecodeResource(code int32, owner string) ResourceStatus {
	var st ResourceState
	switch code {
	case 2:
		st = ResourceOnline
	case 3:
		st = ResourceOffline
	case 4:
		st = ResourceFailed
	case 129:
		st = ResourceOnlinePending
	case 130:
		st = ResourceOfflinePending
	default:
		if code == hostctl.StateUnknown {
			code = 0
		}
		return ResourceStatus{State: ResourceUnknown, Code: code}
	}
	return ResourceStatus{State: st, Code: code, Owner: owner}
}

type NodeState int

const (
	NodeUnknown NodeState = iota
	NodeUp
	NodeDown
	NodePaused
	NodeJoining
)

var nodeStateNames = []string{"Unknown", "Up", "Down", "Paused", "Joining"}

func (s NodeState) String() string {
	return nodeStateNames[s]
}

type NodeStatus struct {
	State NodeState `json:"state"`
	Code  int32     `json:"code"`
}

func (s NodeStatus) String() string {
	if s.State == NodeUnknown {
		return fmt.Sprintf("Unknown(%d)", s.Code)
	}
	return s.State.String()
}

func DecodeNode(code int32) NodeStatus {
	switch code {
	case 0:
		return NodeStatus{State: NodeUp, Code: code}
	case 1:
		return NodeStatus{State: NodeDown, Code: code}
	case 2:
		return NodeStatus{State: NodePaused, Code: code}
	case 3:
		return NodeStatus{State: NodeJoining, Code: code}
	}
	if code == hostctl.StateUnknown {
		code = 0
	}
	return NodeStatus{State: NodeUnknown, Code: code}
}
