package workerpool

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/config"
	"hyperv-facade/helper"
	"hyperv-facade/helper/job"
	"hyperv-facade/helper/virtualmachine"
)

type VirtualMachineOperator struct {
	api     *helper.API
	vm      *virtualmachine.VirtualMachine
	display string
}

func GetVirtualMachineOperator(ctx context.Context, api *helper.API, nameOrID string) (*VirtualMachineOperator, error) {
	vm, err := virtualmachine.Get(ctx, api, nameOrID)
	if err != nil {
		return nil, err
	}
	return &VirtualMachineOperator{
		api:     api,
		vm:      vm,
		display: fmt.Sprintf("%s(%s)", vm.Name(), vm.ID()),
	}, nil
}

func (o *VirtualMachineOperator) ID() string {
	return o.vm.ID()
}

func (o *VirtualMachineOperator) PowerOn(ctx context.Context) error {
	return o.run(ctx, o.vm.Start)
}

// PowerOff 配置了shutdownFirst且虚拟机运行中时先尝试正常关机，失败再强制关机
func (o *VirtualMachineOperator) PowerOff(ctx context.Context) error {
	if config.G.Hyperv.Default.Operation.ShutdownFirst && o.vm.Status().State == virtualmachine.Running {
		err := o.run(ctx, o.vm.Stop)
		if err == nil {
			return nil
		}
		logging.L().Warn(fmt.Sprintf("正常关闭虚拟机[%s]失败，尝试强制关机", o.display), err)
		if _, err := o.vm.Refresh(ctx); err != nil {
			return err
		}
		if o.vm.Status().State == virtualmachine.Off {
			return nil
		}
	}
	return o.run(ctx, o.vm.ForceStop)
}

func (o *VirtualMachineOperator) Shutdown(ctx context.Context) error {
	return o.run(ctx, o.vm.Stop)
}

func (o *VirtualMachineOperator) Pause(ctx context.Context) error {
	return o.run(ctx, o.vm.Pause)
}

func (o *VirtualMachineOperator) Resume(ctx context.Context) error {
	return o.run(ctx, o.vm.Resume)
}

func (o *VirtualMachineOperator) Save(ctx context.Context) error {
	return o.run(ctx, o.vm.Save)
}

func (o *VirtualMachineOperator) Reset(ctx context.Context) error {
	return o.run(ctx, o.vm.Reset)
}

func (o *VirtualMachineOperator) Hibernate(ctx context.Context) error {
	return o.run(ctx, o.vm.Hibernate)
}

// Destroy 未关机的虚拟机先强制关机再删除
func (o *VirtualMachineOperator) Destroy(ctx context.Context) error {
	if o.vm.Status().State != virtualmachine.Off {
		if err := o.run(ctx, o.vm.ForceStop); err != nil {
			logging.L().Error(fmt.Sprintf("删除前关闭虚拟机[%s]失败", o.display), err)
			return err
		}
	}
	err := o.vm.Delete(ctx)
	if err != nil {
		logging.L().Error(fmt.Sprintf("删除虚拟机[%s]失败", o.display), err)
	}
	return err
}

// run 提交状态转换并等待作业结束
func (o *VirtualMachineOperator) run(ctx context.Context, submit func(context.Context) (*job.Submission, error)) error {
	sub, err := submit(ctx)
	if err != nil {
		return err
	}
	if _, err = o.api.Tracker.Run(ctx, sub, 0); err != nil {
		logging.L().Error(fmt.Sprintf("虚拟机[%s]作业执行失败", o.display), err)
		return err
	}
	_, err = o.vm.Refresh(ctx)
	return err
}
