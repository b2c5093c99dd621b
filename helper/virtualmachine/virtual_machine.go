// Package virtualmachine 虚拟机对象与生命周期状态机。
//
// 状态转换请求先用最近一次观察到的状态校验，非法请求直接返回 InvalidState，
// 不访问宿主机。合法请求返回 job.Submission，状态机不假设操作已经完成，
// 调用方需要等待作业或调用 Refresh 重新读取状态。
package virtualmachine

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/job"
	"hyperv-facade/hostctl"
)

const (
	Class        = "Msvm_ComputerSystem"
	SettingClass = "Msvm_VirtualSystemSettingData"
	caption      = "Virtual Machine"

	realizedSystem = "Microsoft:Hyper-V:System:Realized"
)

type VirtualMachine struct {
	api    *helper.API
	obj    *hostctl.Object
	status Status
}

func wrap(api *helper.API, o *hostctl.Object) *VirtualMachine {
	return &VirtualMachine{api: api, obj: o, status: DecodeState(o.Uint32("EnabledState"))}
}

func List(ctx context.Context, api *helper.API) ([]*VirtualMachine, error) {
	logging.L().Debug("查询所有虚拟机")
	objs, err := handle.QueryAll(ctx, api.Host, fmt.Sprintf("SELECT * FROM %s WHERE Caption = '%s'", Class, caption))
	if err != nil {
		logging.L().Errorf("查询虚拟机时发生错误: %v", err)
		return nil, err
	}
	ret := make([]*VirtualMachine, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, wrap(api, o))
	}
	return ret, nil
}

func GetByName(ctx context.Context, api *helper.API, name string) (*VirtualMachine, error) {
	logging.L().Debug(fmt.Sprintf("使用名称[%s]获取虚拟机", name))
	return get(ctx, api, "ElementName", name)
}

func GetByID(ctx context.Context, api *helper.API, ID string) (*VirtualMachine, error) {
	logging.L().Debug(fmt.Sprintf("使用ID[%s]获取虚拟机", ID))
	return get(ctx, api, "Name", ID)
}

// Get 先按ID查找，找不到再按名称查找
func Get(ctx context.Context, api *helper.API, nameOrID string) (*VirtualMachine, error) {
	vm, err := GetByID(ctx, api, nameOrID)
	if errs.IsKind(err, errs.NotFound) {
		return GetByName(ctx, api, nameOrID)
	}
	return vm, err
}

func get(ctx context.Context, api *helper.API, prop, value string) (*VirtualMachine, error) {
	if value == "" {
		return nil, errs.Newf(errs.InvalidParameter, "get vm", "虚拟机名称或ID不能为空")
	}
	q := fmt.Sprintf("SELECT * FROM %s WHERE Caption = '%s' AND %s = %s", Class, caption, prop, utils.Quote(value))
	o, err := handle.QueryFirst(ctx, api.Host, q)
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.NotFound, "get vm", "虚拟机[%s]不存在", value)
		}
		return nil, err
	}
	return wrap(api, o), nil
}

func (vm *VirtualMachine) ID() string {
	return vm.obj.String("Name")
}

func (vm *VirtualMachine) Name() string {
	return vm.obj.String("ElementName")
}

func (vm *VirtualMachine) Path() string {
	return vm.obj.Path
}

func (vm *VirtualMachine) API() *helper.API {
	return vm.api
}

func (vm *VirtualMachine) Object() *hostctl.Object {
	return vm.obj
}

// Status 最近一次观察到的状态
func (vm *VirtualMachine) Status() Status {
	return vm.status
}

// UptimeMillis 运行时长
func (vm *VirtualMachine) UptimeMillis() uint64 {
	return vm.obj.Uint64("OnTimeInMilliseconds")
}

// Refresh 重新读取虚拟机对象与EnabledState
func (vm *VirtualMachine) Refresh(ctx context.Context) (Status, error) {
	o, err := vm.api.Host.GetObject(ctx, vm.obj.Path)
	if err != nil {
		return vm.status, errs.FromHost("refresh vm", vm.Name(), err)
	}
	vm.obj = o
	vm.status = DecodeState(o.Uint32("EnabledState"))
	return vm.status, nil
}

// Request 校验当前状态并提交状态转换，不等待完成
func (vm *VirtualMachine) Request(ctx context.Context, op Operation) (*job.Submission, error) {
	if !Allowed(op, vm.status.State) {
		return nil, errs.Newf(errs.InvalidState, op.String(), "虚拟机[%s]当前状态为%s，不能执行%s", vm.Name(), vm.status, op)
	}
	logging.L().Debug(fmt.Sprintf("虚拟机[%s]执行%s，当前状态%s", vm.Name(), op, vm.status))
	if op == Stop {
		return vm.shutdown(ctx)
	}
	return job.Submit(ctx, vm.api.Host, vm.obj.Path, "RequestStateChange", hostctl.Params{
		"RequestedState": requestedStates[op],
	})
}

// shutdown 通过集成服务通知客户机关机
func (vm *VirtualMachine) shutdown(ctx context.Context) (*job.Submission, error) {
	q := fmt.Sprintf("SELECT * FROM Msvm_ShutdownComponent WHERE SystemName = %s", utils.Quote(vm.ID()))
	sc, err := handle.QueryFirst(ctx, vm.api.Host, q)
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.OperationFailed, "stop", "虚拟机[%s]没有可用的关机集成服务", vm.Name())
		}
		return nil, err
	}
	return job.Submit(ctx, vm.api.Host, sc.Path, "InitiateShutdown", hostctl.Params{
		"Force":  false,
		"Reason": "hyperv-facade",
	})
}

func (vm *VirtualMachine) Start(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Start)
}

func (vm *VirtualMachine) Stop(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Stop)
}

func (vm *VirtualMachine) ForceStop(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, ForceStop)
}

func (vm *VirtualMachine) Pause(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Pause)
}

func (vm *VirtualMachine) Resume(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Resume)
}

func (vm *VirtualMachine) Save(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Save)
}

func (vm *VirtualMachine) Reset(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Reset)
}

func (vm *VirtualMachine) Hibernate(ctx context.Context) (*job.Submission, error) {
	return vm.Request(ctx, Hibernate)
}

// Settings 当前生效的虚拟机设置
func (vm *VirtualMachine) Settings(ctx context.Context) (*hostctl.Object, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {%s} WHERE AssocClass = Msvm_SettingsDefineState ResultClass = %s", vm.obj.Path, SettingClass)
	s, err := handle.QueryFirst(ctx, vm.api.Host, q)
	if errs.IsKind(err, errs.NotFound) {
		return nil, errs.Newf(errs.NotFound, "vm settings", "虚拟机[%s]没有设置数据", vm.Name())
	}
	return s, err
}

// Resources 虚拟机设置下指定类的资源设置，subtype为空时不过滤
func (vm *VirtualMachine) Resources(ctx context.Context, class, subtype string) ([]*hostctl.Object, error) {
	s, err := vm.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return ResourcesOf(ctx, vm.api.Host, s.Path, class, subtype)
}

func ResourcesOf(ctx context.Context, host hostctl.Management, settingsPath, class, subtype string) ([]*hostctl.Object, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {%s} WHERE AssocClass = Msvm_VirtualSystemSettingDataComponent ResultClass = %s", settingsPath, class)
	objs, err := handle.QueryAll(ctx, host, q)
	if err != nil || subtype == "" {
		return objs, err
	}
	var ret []*hostctl.Object
	for _, o := range objs {
		if o.String("ResourceSubType") == subtype {
			ret = append(ret, o)
		}
	}
	return ret, nil
}
