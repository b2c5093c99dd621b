package clus

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/job"
	"hyperv-facade/hostctl"
)

type Resource struct {
	h *handle.Handle
}

func (r *Resource) Name() string {
	return r.h.Name()
}

func (r *Resource) Release() error {
	return r.h.Release()
}

func (r *Resource) State(ctx context.Context) (ResourceStatus, error) {
	raw, err := r.h.Raw()
	if err != nil {
		return ResourceStatus{}, err
	}
	code, owner, err := r.h.Host().State(ctx, raw)
	if err != nil {
		return ResourceStatus{}, errs.FromHost("resource state", r.Name(), err)
	}
	return DecodeResource(code, owner), nil
}

func (r *Resource) Type(ctx context.Context) (string, error) {
	raw, err := r.h.Raw()
	if err != nil {
		return "", err
	}
	t, err := r.h.Host().ResourceType(ctx, raw)
	if err != nil {
		return "", errs.FromHost("resource type", r.Name(), err)
	}
	return t, nil
}

func (r *Resource) Online(ctx context.Context) (job.Outcome, error) {
	st, err := r.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	if st.State == ResourceOnline {
		return job.Skipped, nil
	}
	if st.Pending() {
		return job.Completed, errs.Newf(errs.InvalidState, "online resource", "资源[%s]状态为%s", r.Name(), st)
	}
	return r.control(ctx, hostctl.ControlOnline)
}

func (r *Resource) Offline(ctx context.Context) (job.Outcome, error) {
	st, err := r.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	if st.State == ResourceOffline {
		return job.Skipped, nil
	}
	if st.Pending() {
		return job.Completed, errs.Newf(errs.InvalidState, "offline resource", "资源[%s]状态为%s", r.Name(), st)
	}
	return r.control(ctx, hostctl.ControlOffline)
}

// SharedVolume 资源不是CSV时返回 NotFound
func (r *Resource) SharedVolume(ctx context.Context) (*SharedVolume, error) {
	raw, err := r.h.Raw()
	if err != nil {
		return nil, err
	}
	v, err := r.h.Host().SharedVolume(ctx, raw)
	if err != nil {
		return nil, errs.FromHost("shared volume", r.Name(), err)
	}
	if v == nil {
		return nil, errs.New(errs.NotFound, "shared volume", r.Name())
	}
	st, err := r.State(ctx)
	if err != nil {
		return nil, err
	}
	return &SharedVolume{
		Name:               r.Name(),
		VolumeName:         v.VolumeName,
		FriendlyName:       v.FriendlyName,
		MountPoint:         v.MountPoint,
		State:              st.String(),
		Owner:              st.Owner,
		FaultState:         v.FaultState,
		BackupState:        v.BackupState,
		RedirectedIoReason: v.RedirectedIoReason,
		InMaintenance:      v.InMaintenance,
	}, nil
}

// SetMaintenance 打开或关闭CSV维护模式
func (r *Resource) SetMaintenance(ctx context.Context, on bool) (job.Outcome, error) {
	if _, err := r.SharedVolume(ctx); err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return job.Completed, errs.Newf(errs.InvalidParameter, "maintenance", "资源[%s]不是CSV", r.Name())
		}
		return job.Completed, err
	}
	ctl := hostctl.ControlMaintenanceOff
	if on {
		ctl = hostctl.ControlMaintenanceOn
	}
	return r.control(ctx, ctl)
}

func (r *Resource) control(ctx context.Context, ctl hostctl.Control) (job.Outcome, error) {
	raw, err := r.h.Raw()
	if err != nil {
		return job.Completed, err
	}
	logging.L().Debug(fmt.Sprintf("资源[%s]执行%s", r.Name(), ctl))
	return job.Decode(ctl.String()+" resource", r.Name(), r.h.Host().Control(ctx, raw, ctl, hostctl.InvalidHandle))
}

// SharedVolume CSV信息
type SharedVolume struct {
	Name               string `json:"name"`
	VolumeName         string `json:"volumeName"`
	FriendlyName       string `json:"friendlyName"`
	MountPoint         string `json:"mountPoint"`
	State              string `json:"state"`
	Owner              string `json:"owner,omitempty"`
	FaultState         int32  `json:"faultState"`
	BackupState        int32  `json:"backupState"`
	RedirectedIoReason uint64 `json:"redirectedIoReason"`
	InMaintenance      bool   `json:"inMaintenance"`
}
