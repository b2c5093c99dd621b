// Package snapshot 虚拟机检查点。
package snapshot

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/helper/virtualmachine"
	"hyperv-facade/hostctl"
	"sort"
	"strings"
)

const (
	realizedSnapshot = "Microsoft:Hyper-V:Snapshot:Realized"
	// 完整检查点
	typeFull uint16 = 2
)

type Snapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	VMID         string `json:"vmId"`
	ParentID     string `json:"parentId,omitempty"`
	CreationTime string `json:"creationTime"`
	Current      bool   `json:"current"`
	Path         string `json:"-"`
}

func wrap(o *hostctl.Object, current string) *Snapshot {
	s := &Snapshot{
		ID:           o.String("InstanceID"),
		Name:         o.String("ElementName"),
		VMID:         o.String("VirtualSystemIdentifier"),
		CreationTime: o.String("CreationTime"),
		Current:      o.Path == current,
		Path:         o.Path,
	}
	if p := o.String("Parent"); p != "" {
		s.ParentID = instanceIDOf(p)
	}
	return s
}

// instanceIDOf 从对象路径中取出InstanceID
func instanceIDOf(path string) string {
	i := strings.Index(path, `InstanceID="`)
	if i < 0 {
		return path
	}
	id := path[i+len(`InstanceID="`):]
	id = strings.TrimSuffix(id, `"`)
	return strings.ReplaceAll(id, `\\`, `\`)
}

// List 按创建时间排序
func List(ctx context.Context, vm *virtualmachine.VirtualMachine) ([]*Snapshot, error) {
	logging.L().Debug(fmt.Sprintf("查询虚拟机[%s]的检查点", vm.Name()))
	if _, err := vm.Refresh(ctx); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT * FROM %s WHERE VirtualSystemIdentifier = %s AND VirtualSystemType = '%s'",
		virtualmachine.SettingClass, utils.Quote(vm.ID()), realizedSnapshot)
	objs, err := handle.QueryAll(ctx, vm.API().Host, q)
	if err != nil {
		return nil, err
	}
	current := vm.Object().String("CurrentSnapshot")
	ret := make([]*Snapshot, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, wrap(o, current))
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].CreationTime < ret[j].CreationTime })
	return ret, nil
}

// Get 按ID或名称查找
func Get(ctx context.Context, vm *virtualmachine.VirtualMachine, nameOrID string) (*Snapshot, error) {
	if nameOrID == "" {
		return nil, errs.Newf(errs.InvalidParameter, "get snapshot", "检查点名称或ID不能为空")
	}
	all, err := List(ctx, vm)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.ID == nameOrID {
			return s, nil
		}
	}
	for _, s := range all {
		if s.Name == nameOrID {
			return s, nil
		}
	}
	return nil, errs.Newf(errs.NotFound, "get snapshot", "虚拟机[%s]的检查点[%s]不存在", vm.Name(), nameOrID)
}

// Create 创建检查点并等待完成，name不为空时再重命名
func Create(ctx context.Context, vm *virtualmachine.VirtualMachine, name string) (*Snapshot, error) {
	api := vm.API()
	logging.L().Info(fmt.Sprintf("为虚拟机[%s]创建检查点[%s]", vm.Name(), name))
	out, err := api.Call(ctx, helper.SnapshotService, "CreateSnapshot", hostctl.Params{
		"AffectedSystem": vm.Path(),
		"SnapshotType":   typeFull,
	})
	if err != nil {
		return nil, err
	}
	path := out.String("ResultingSnapshot")
	if path == "" {
		return nil, errs.Newf(errs.OperationFailed, "create snapshot", "主机没有返回检查点")
	}
	if name != "" {
		if err := rename(ctx, api, path, name); err != nil {
			return nil, err
		}
	}
	o, err := api.Host.GetObject(ctx, path)
	if err != nil {
		return nil, errs.FromHost("create snapshot", vm.Name(), err)
	}
	return wrap(o, path), nil
}

func rename(ctx context.Context, api *helper.API, path, name string) error {
	m := &hostctl.Object{Path: path, Class: virtualmachine.SettingClass, Props: hostctl.Params{}}
	m.Set("ElementName", name)
	_, err := api.Call(ctx, helper.ManagementService, "ModifySystemSettings", hostctl.Params{"SystemSettings": m})
	return err
}

func Rename(ctx context.Context, vm *virtualmachine.VirtualMachine, nameOrID, name string) (*Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Newf(errs.InvalidParameter, "rename snapshot", "检查点名称不能为空")
	}
	s, err := Get(ctx, vm, nameOrID)
	if err != nil {
		return nil, err
	}
	if err := rename(ctx, vm.API(), s.Path, name); err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

// Apply 恢复到检查点，运行中的虚拟机需要先关机
func Apply(ctx context.Context, vm *virtualmachine.VirtualMachine, nameOrID string) error {
	s, err := Get(ctx, vm, nameOrID)
	if err != nil {
		return err
	}
	if st := vm.Status(); st.State == virtualmachine.Running {
		return errs.Newf(errs.InvalidState, "apply snapshot", "虚拟机[%s]当前状态为%s，不能恢复检查点", vm.Name(), st)
	}
	logging.L().Info(fmt.Sprintf("虚拟机[%s]恢复到检查点[%s]", vm.Name(), s.Name))
	_, err = vm.API().Call(ctx, helper.SnapshotService, "ApplySnapshot", hostctl.Params{"Snapshot": s.Path})
	return err
}

func Delete(ctx context.Context, vm *virtualmachine.VirtualMachine, nameOrID string) error {
	s, err := Get(ctx, vm, nameOrID)
	if err != nil {
		return err
	}
	logging.L().Info(fmt.Sprintf("删除虚拟机[%s]的检查点[%s]", vm.Name(), s.Name))
	_, err = vm.API().Call(ctx, helper.SnapshotService, "DestroySnapshot", hostctl.Params{"AffectedSnapshot": s.Path})
	return err
}
