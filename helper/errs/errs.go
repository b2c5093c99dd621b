// Package errs 定义控制面核心返回的类型化错误。
//
// 校验类错误（InvalidState、InvalidParameter）在本地产生，不访问宿主机；
// 宿主机返回的失败保留原始数值码与描述。核心从不自动重试。
package errs

import (
	"errors"
	"fmt"
	"hyperv-facade/hostctl"
)

type Kind int

const (
	OperationFailed Kind = iota
	NotFound
	InvalidState
	InvalidParameter
	Timeout
	PermissionDenied
	CapacityExceeded
	PoolNotFound
	CapabilitiesNotFound
	DefaultTemplateNotFound
	ConnectionFailed
	MmioNotConfigured
)

var kindNames = map[Kind]string{
	OperationFailed:         "OperationFailed",
	NotFound:                "NotFound",
	InvalidState:            "InvalidState",
	InvalidParameter:        "InvalidParameter",
	Timeout:                 "Timeout",
	PermissionDenied:        "PermissionDenied",
	CapacityExceeded:        "CapacityExceeded",
	PoolNotFound:            "PoolNotFound",
	CapabilitiesNotFound:    "CapabilitiesNotFound",
	DefaultTemplateNotFound: "DefaultTemplateNotFound",
	ConnectionFailed:        "ConnectionFailed",
	MmioNotConfigured:       "MmioNotConfigured",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error Op为失败的操作，Target为操作对象，Code/Description来自宿主机
type Error struct {
	Kind        Kind
	Op          string
	Target      string
	Code        uint32
	Description string
	Err         error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Target != "" {
		msg += " [" + e.Target + "]"
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类错误视为相等，便于 errors.Is(err, &errs.Error{Kind: errs.NotFound})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func New(kind Kind, op, target string) *Error {
	return &Error{Kind: kind, Op: op, Target: target}
}

func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Description: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// FromCode 将宿主机失败码映射为错误类型，保留原始码与描述
func FromCode(op, target string, code uint32, description string) *Error {
	return &Error{Kind: KindOfCode(code), Op: op, Target: target, Code: code, Description: description}
}

func KindOfCode(code uint32) Kind {
	switch code {
	case hostctl.ReturnAccessDenied:
		return PermissionDenied
	case hostctl.ReturnInvalidParameter:
		return InvalidParameter
	case hostctl.ReturnInvalidState:
		return InvalidState
	case hostctl.ReturnOutOfMemory:
		return CapacityExceeded
	case hostctl.ReturnFileNotFound:
		return NotFound
	}
	return OperationFailed
}

// FromHost 将宿主机调用返回的错误转换为类型化错误
func FromHost(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, hostctl.ErrNotFound):
		return Wrap(NotFound, op, target, err)
	case errors.Is(err, hostctl.ErrInvalidHandle):
		return Wrap(InvalidState, op, target, err)
	case errors.Is(err, hostctl.ErrUnreachable):
		return Wrap(ConnectionFailed, op, target, err)
	}
	return Wrap(OperationFailed, op, target, err)
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf 非类型化错误按OperationFailed处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return OperationFailed
}

// CodeOf 返回宿主机原始失败码，没有则为0
func CodeOf(err error) uint32 {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
