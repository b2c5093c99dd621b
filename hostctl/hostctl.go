// Package hostctl 定义与宿主机管理面的交互边界。
//
// 宿主机提供两类调用：故障转移集群接口（句柄、分步枚举、状态码）与
// 管理对象接口（对象路径、查询、关联查询、方法调用）。具体传输由
// simhost（进程内模拟）与 agent（HTTP主机代理）实现。
package hostctl

import (
	"context"
	"errors"
)

// Handle 宿主机侧的不透明句柄，0为无效句柄
type Handle uint64

const InvalidHandle Handle = 0

type Kind int

const (
	KindCluster Kind = iota + 1
	KindNode
	KindGroup
	KindResource
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindCluster:
		return "Cluster"
	case KindNode:
		return "Node"
	case KindGroup:
		return "Group"
	case KindResource:
		return "Resource"
	case KindQuery:
		return "Query"
	}
	return "Unknown"
}

// 集群接口状态码
const (
	StatusSuccess     uint32 = 0
	StatusMoreData    uint32 = 234
	StatusNoMoreItems uint32 = 259
	StatusIOPending   uint32 = 997
)

// 管理方法返回值
const (
	ReturnCompleted        uint32 = 0
	ReturnJobStarted       uint32 = 4096
	ReturnFailed           uint32 = 32768
	ReturnAccessDenied     uint32 = 32769
	ReturnNotSupported     uint32 = 32770
	ReturnTimeout          uint32 = 32772
	ReturnInvalidParameter uint32 = 32773
	ReturnSystemInUse      uint32 = 32774
	ReturnInvalidState     uint32 = 32775
	ReturnOutOfMemory      uint32 = 32778
	ReturnFileNotFound     uint32 = 32779
)

// 集群状态中的未知状态
const StateUnknown int32 = -1

var (
	ErrNotFound      = errors.New("host: object not found")
	ErrInvalidHandle = errors.New("host: invalid handle")
	ErrUnreachable   = errors.New("host: unreachable")
)

type Control int

const (
	ControlOnline Control = iota + 1
	ControlOffline
	ControlPause
	ControlResume
	ControlMove
	ControlMaintenanceOn
	ControlMaintenanceOff
)

func (c Control) String() string {
	switch c {
	case ControlOnline:
		return "Online"
	case ControlOffline:
		return "Offline"
	case ControlPause:
		return "Pause"
	case ControlResume:
		return "Resume"
	case ControlMove:
		return "Move"
	case ControlMaintenanceOn:
		return "MaintenanceOn"
	case ControlMaintenanceOff:
		return "MaintenanceOff"
	}
	return "Unknown"
}

// Enumerator 分步枚举：先探测下一项名称长度，再按长度取值。
// EnumProbe 在没有更多项时返回 StatusNoMoreItems。
type Enumerator interface {
	EnumProbe(ctx context.Context, enum Handle, index int) (size int, status uint32)
	EnumFetch(ctx context.Context, enum Handle, index int, size int) (name string, status uint32)
	CloseEnum(enum Handle) error
}

type VolumeInfo struct {
	VolumeName         string `json:"volumeName"`
	FriendlyName       string `json:"friendlyName"`
	MountPoint         string `json:"mountPoint"`
	FaultState         int32  `json:"faultState"`
	BackupState        int32  `json:"backupState"`
	RedirectedIoReason uint64 `json:"redirectedIoReason"`
	InMaintenance      bool   `json:"inMaintenance"`
}

type Cluster interface {
	Enumerator
	// OpenCluster name为空时打开本机所在集群
	OpenCluster(ctx context.Context, name string) (Handle, error)
	ClusterName(ctx context.Context, cluster Handle) (string, error)
	OpenEnum(ctx context.Context, cluster Handle, kind Kind) (Handle, error)
	Open(ctx context.Context, cluster Handle, kind Kind, name string) (Handle, error)
	Close(h Handle) error
	// State 返回原始状态码与所属节点名，节点名为空表示无归属
	State(ctx context.Context, h Handle) (code int32, owner string, err error)
	Control(ctx context.Context, h Handle, ctl Control, target Handle) uint32
	ResourceType(ctx context.Context, h Handle) (string, error)
	// SharedVolume 资源不是CSV时返回nil
	SharedVolume(ctx context.Context, h Handle) (*VolumeInfo, error)
	IsPathOnSharedVolume(ctx context.Context, path string) (bool, error)
}

type Management interface {
	Enumerator
	// ExecQuery 打开查询结果枚举，枚举出的名称为对象路径
	ExecQuery(ctx context.Context, query string) (Handle, error)
	GetObject(ctx context.Context, path string) (*Object, error)
	ExecMethod(ctx context.Context, path, method string, in Params) (Params, error)
}

type Host interface {
	Cluster
	Management
	Ping(ctx context.Context) error
}
