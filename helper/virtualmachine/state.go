package virtualmachine

import (
	"fmt"
)

type State int

const (
	Unknown State = iota
	Off
	Starting
	Running
	Pausing
	Paused
	Resuming
	Saving
	Saved
	Stopping
	Hibernated
)

var stateNames = []string{"Unknown", "Off", "Starting", "Running", "Pausing", "Paused", "Resuming", "Saving", "Saved", "Stopping", "Hibernated"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Status 最近一次观察到的状态，Unknown时Code为宿主机原始EnabledState
type Status struct {
	State State  `json:"state"`
	Code  uint32 `json:"code"`
}

func (s Status) String() string {
	if s.State == Unknown {
		return fmt.Sprintf("Unknown(%d)", s.Code)
	}
	return s.State.String()
}

// AtRest 关机、保存或休眠
func (s Status) AtRest() bool {
	return s.State == Off || s.State == Saved || s.State == Hibernated
}

var enabledStates = map[uint32]State{
	2:     Running,
	3:     Off,
	4:     Stopping,
	32768: Paused,
	32769: Saved,
	32770: Starting,
	32771: Saving,
	32773: Saving,
	32774: Stopping,
	32776: Pausing,
	32777: Resuming,
	32779: Saved,
	32783: Hibernated,
}

func DecodeState(code uint32) Status {
	if st, ok := enabledStates[code]; ok {
		return Status{State: st, Code: code}
	}
	return Status{State: Unknown, Code: code}
}

// RequestStateChange的目标状态
const (
	requestRunning    uint32 = 2
	requestOff        uint32 = 3
	requestReset      uint32 = 11
	requestPaused     uint32 = 32768
	requestSaved      uint32 = 32769
	requestHibernated uint32 = 32783
)

type Operation int

const (
	Start Operation = iota + 1
	Stop
	ForceStop
	Pause
	Resume
	Save
	Reset
	Hibernate
)

var operationNames = map[Operation]string{
	Start:     "start",
	Stop:      "stop",
	ForceStop: "force stop",
	Pause:     "pause",
	Resume:    "resume",
	Save:      "save",
	Reset:     "reset",
	Hibernate: "hibernate",
}

func (o Operation) String() string {
	if n, ok := operationNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// 各操作允许的源状态。强制关机只作为单独的操作提供，正常关机不会退化为强制关机
var legalSources = map[Operation][]State{
	Start:     {Off, Saved, Paused, Hibernated},
	Stop:      {Running},
	ForceStop: {Running, Paused, Saved, Hibernated, Starting, Stopping, Pausing, Resuming, Saving},
	Pause:     {Running},
	Resume:    {Paused},
	Save:      {Running, Paused},
	Reset:     {Running},
	Hibernate: {Running},
}

var requestedStates = map[Operation]uint32{
	Start:     requestRunning,
	ForceStop: requestOff,
	Pause:     requestPaused,
	Resume:    requestRunning,
	Save:      requestSaved,
	Reset:     requestReset,
	Hibernate: requestHibernated,
}

// Allowed 判断在状态st下能否执行op
func Allowed(op Operation, st State) bool {
	for _, s := range legalSources[op] {
		if s == st {
			return true
		}
	}
	return false
}
