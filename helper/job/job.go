// Package job 统一处理宿主机的异步操作。
//
// 集群控制调用返回997表示操作已被接受、在后台执行，这不是错误；
// 管理方法返回4096表示启动了作业，需要轮询作业对象获取结果。
// 两种约定都只在本包解码。作业不会被自动重试。
package job

import (
	"context"
	"errors"
	"fmt"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"time"
)

type Outcome int

const (
	// Completed 宿主机已同步完成
	Completed Outcome = iota
	// Accepted 宿主机已接受，操作在后台进行
	Accepted
	// Skipped 目标状态已满足，没有调用宿主机
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "Completed"
	case Accepted:
		return "Accepted"
	case Skipped:
		return "Skipped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Decode 解码集群控制调用的状态码
func Decode(op, target string, code uint32) (Outcome, error) {
	switch code {
	case hostctl.StatusSuccess:
		return Completed, nil
	case hostctl.StatusIOPending:
		return Accepted, nil
	}
	return Completed, errs.FromCode(op, target, code, "")
}

type Status int

const (
	Pending Status = iota
	Running
	Succeeded
	Failed
	Unknown
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

// DecodeState 解码作业对象的JobState
func DecodeState(state uint16) Status {
	switch state {
	case 2, 3, 4, 5, 6:
		return Running
	case 7:
		return Succeeded
	case 8, 9, 10:
		return Failed
	}
	return Unknown
}

type Job struct {
	Path        string
	Op          string
	Status      Status
	State       uint16
	ErrorCode   uint32
	Description string
	Percent     uint16
}

func (j *Job) Terminal() bool {
	return j.Status == Succeeded || j.Status == Failed
}

// Err 失败作业对应的类型化错误
func (j *Job) Err() error {
	if j.Status != Failed {
		return nil
	}
	return errs.FromCode(j.Op, j.Path, j.ErrorCode, j.Description)
}

// Submission 方法调用的结果：Job为nil表示已同步完成
type Submission struct {
	Out hostctl.Params
	Job *Job
}

func (s *Submission) Immediate() bool {
	return s.Job == nil
}

func (s *Submission) Outcome() Outcome {
	if s.Job == nil {
		return Completed
	}
	return Accepted
}

// Submit 调用管理方法。返回值0为同步完成，4096为启动作业，其余为失败
func Submit(ctx context.Context, host hostctl.Management, path, method string, in hostctl.Params) (*Submission, error) {
	out, err := host.ExecMethod(ctx, path, method, in)
	if err != nil {
		return nil, errs.FromHost(method, path, err)
	}
	switch rv := out.Uint32("ReturnValue"); rv {
	case hostctl.ReturnCompleted:
		return &Submission{Out: out}, nil
	case hostctl.ReturnJobStarted:
		jobPath := out.String("Job")
		if jobPath == "" {
			return nil, errs.Newf(errs.OperationFailed, method, "作业已启动但未返回作业路径")
		}
		return &Submission{Out: out, Job: &Job{Path: jobPath, Op: method, Status: Pending}}, nil
	default:
		return nil, errs.FromCode(method, path, rv, "")
	}
}

const (
	DefaultInterval    = 100 * time.Millisecond
	DefaultMaxInterval = time.Second
	DefaultTimeout     = 300 * time.Second
)

type Tracker struct {
	host        hostctl.Management
	Interval    time.Duration
	MaxInterval time.Duration
	Timeout     time.Duration
}

func NewTracker(host hostctl.Management) *Tracker {
	return &Tracker{
		host:        host,
		Interval:    DefaultInterval,
		MaxInterval: DefaultMaxInterval,
		Timeout:     DefaultTimeout,
	}
}

// Poll 刷新一次作业状态
func (t *Tracker) Poll(ctx context.Context, j *Job) error {
	o, err := t.host.GetObject(ctx, j.Path)
	if err != nil {
		return errs.FromHost("poll job", j.Path, err)
	}
	j.State = o.Uint16("JobState")
	j.Status = DecodeState(j.State)
	j.ErrorCode = o.Uint32("ErrorCode")
	j.Description = o.String("ErrorDescription")
	j.Percent = o.Uint16("PercentComplete")
	return nil
}

// Wait 轮询直到作业成功、失败或超时，timeout为0时使用默认超时。
// 取消ctx或超时只停止等待，宿主机上已接受的作业无法撤销，仍会继续执行。
func (t *Tracker) Wait(ctx context.Context, j *Job, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = t.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	err := utils.WaitFor(ctx, timeout, interval, t.MaxInterval, func() (bool, error) {
		if err := t.Poll(ctx, j); err != nil {
			return false, err
		}
		if !j.Terminal() {
			return false, nil
		}
		return true, j.Err()
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, utils.ErrPollTimeout), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.Timeout, j.Op, j.Path, err)
	case errors.Is(err, context.Canceled):
		return errs.Wrap(errs.OperationFailed, j.Op, j.Path, err)
	}
	return err
}

// Run 同步完成时直接返回输出参数，否则等待作业结束
func (t *Tracker) Run(ctx context.Context, sub *Submission, timeout time.Duration) (hostctl.Params, error) {
	if sub.Immediate() {
		return sub.Out, nil
	}
	if err := t.Wait(ctx, sub.Job, timeout); err != nil {
		return sub.Out, err
	}
	return sub.Out, nil
}

// Call 提交并等待
func (t *Tracker) Call(ctx context.Context, path, method string, in hostctl.Params) (hostctl.Params, error) {
	sub, err := Submit(ctx, t.host, path, method, in)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx, sub, 0)
}

func (t *Tracker) Host() hostctl.Management {
	return t.host
}
