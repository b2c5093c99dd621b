package helper

import (
	"context"
	"fmt"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/job"
	"hyperv-facade/hostctl"
)

// 管理服务类名
const (
	ManagementService       = "Msvm_VirtualSystemManagementService"
	SnapshotService         = "Msvm_VirtualSystemSnapshotService"
	ImageService            = "Msvm_ImageManagementService"
	SwitchService           = "Msvm_VirtualEthernetSwitchManagementService"
	AssignableDeviceService = "Msvm_AssignableDeviceService"
)

// Service 获取主机上的管理服务对象
func (a *API) Service(ctx context.Context, class string) (*hostctl.Object, error) {
	o, err := handle.QueryFirst(ctx, a.Host, fmt.Sprintf("SELECT * FROM %s", class))
	if errs.IsKind(err, errs.NotFound) {
		return nil, errs.Newf(errs.NotFound, "service", "主机上没有管理服务%s", class)
	}
	return o, err
}

// Invoke 在服务上提交方法，不等待作业
func (a *API) Invoke(ctx context.Context, class, method string, in hostctl.Params) (*job.Submission, error) {
	svc, err := a.Service(ctx, class)
	if err != nil {
		return nil, err
	}
	return job.Submit(ctx, a.Host, svc.Path, method, in)
}

// Call 在服务上调用方法并等待作业结束
func (a *API) Call(ctx context.Context, class, method string, in hostctl.Params) (hostctl.Params, error) {
	sub, err := a.Invoke(ctx, class, method, in)
	if err != nil {
		return nil, err
	}
	return a.Tracker.Run(ctx, sub, 0)
}
