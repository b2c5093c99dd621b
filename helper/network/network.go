package network

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/app/utils/stringutils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/hostctl"
)

const Type = "Msvm_VirtualEthernetSwitch"

const (
	SwitchExternal = "External"
	SwitchInternal = "Internal"
	SwitchPrivate  = "Private"
)

type Switch struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	NetAdapter string `json:"netAdapter,omitempty"`
	Notes      string `json:"notes,omitempty"`
	path       string
}

func wrap(o *hostctl.Object) *Switch {
	return &Switch{
		ID:         o.String("Name"),
		Name:       o.String("ElementName"),
		Type:       o.String("SwitchType"),
		NetAdapter: o.String("NetAdapter"),
		Notes:      o.String("Notes"),
		path:       o.Path,
	}
}

func List(ctx context.Context, api *helper.API) ([]*Switch, error) {
	logging.L().Debug("查询所有虚拟交换机")
	objs, err := handle.QueryAll(ctx, api.Host, "SELECT * FROM "+Type)
	if err != nil {
		logging.L().Errorf("查询虚拟交换机时发生错误: %v", err)
		return nil, err
	}
	ret := make([]*Switch, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, wrap(o))
	}
	return ret, nil
}

// Get 按ID或名称获取交换机
func Get(ctx context.Context, api *helper.API, nameOrID string) (*Switch, error) {
	logging.L().Debug(fmt.Sprintf("获取虚拟交换机[%s]", nameOrID))
	if nameOrID == "" {
		return nil, errs.Newf(errs.InvalidParameter, "get switch", "交换机名称或ID不能为空")
	}
	v := utils.Quote(nameOrID)
	o, err := handle.QueryFirst(ctx, api.Host, fmt.Sprintf("SELECT * FROM %s WHERE Name = %s", Type, v))
	if errs.IsKind(err, errs.NotFound) {
		o, err = handle.QueryFirst(ctx, api.Host, fmt.Sprintf("SELECT * FROM %s WHERE ElementName = %s", Type, v))
	}
	if err != nil {
		if errs.IsKind(err, errs.NotFound) {
			return nil, errs.Newf(errs.NotFound, "get switch", "虚拟交换机[%s]不存在", nameOrID)
		}
		return nil, err
	}
	return wrap(o), nil
}

type CreateSpec struct {
	Name       string
	Type       string
	NetAdapter string
	Notes      string
}

func Create(ctx context.Context, api *helper.API, spec CreateSpec) (*Switch, error) {
	if spec.Name == "" {
		return nil, errs.Newf(errs.InvalidParameter, "create switch", "交换机名称不能为空")
	}
	spec.Type = stringutils.EPTThen(spec.Type, SwitchPrivate)
	if !stringutils.EqualFoldAny(spec.Type, SwitchExternal, SwitchInternal, SwitchPrivate) {
		return nil, errs.Newf(errs.InvalidParameter, "create switch", "不支持的交换机类型: %s", spec.Type)
	}
	if stringutils.EqualFoldAny(spec.Type, SwitchExternal) && spec.NetAdapter == "" {
		return nil, errs.Newf(errs.InvalidParameter, "create switch", "外部交换机需要指定物理网卡")
	}
	if _, err := Get(ctx, api, spec.Name); err == nil {
		return nil, errs.Newf(errs.InvalidParameter, "create switch", "虚拟交换机[%s]已存在", spec.Name)
	} else if !errs.IsKind(err, errs.NotFound) {
		return nil, err
	}

	logging.L().Info(fmt.Sprintf("创建%s虚拟交换机[%s]", spec.Type, spec.Name))
	settings := hostctl.NewObject("Msvm_VirtualEthernetSwitchSettingData").
		Set("ElementName", spec.Name).
		Set("SwitchType", spec.Type).
		Set("NetAdapter", spec.NetAdapter).
		Set("Notes", spec.Notes)
	out, err := api.Call(ctx, helper.SwitchService, "DefineSystem", hostctl.Params{"SystemSettings": settings})
	if err != nil {
		return nil, err
	}
	o, err := api.Host.GetObject(ctx, out.String("ResultingSystem"))
	if err != nil {
		return nil, errs.FromHost("create switch", spec.Name, err)
	}
	return wrap(o), nil
}

func (s *Switch) modify(ctx context.Context, api *helper.API, prop, value string) error {
	settings := hostctl.NewObject("Msvm_VirtualEthernetSwitchSettingData").
		Set("VirtualSystemIdentifier", s.ID).
		Set(prop, value)
	_, err := api.Call(ctx, helper.SwitchService, "ModifySystemSettings", hostctl.Params{"SystemSettings": settings})
	return err
}

func Rename(ctx context.Context, api *helper.API, nameOrID, name string) (*Switch, error) {
	if name == "" {
		return nil, errs.Newf(errs.InvalidParameter, "rename switch", "交换机名称不能为空")
	}
	s, err := Get(ctx, api, nameOrID)
	if err != nil {
		return nil, err
	}
	if err = s.modify(ctx, api, "ElementName", name); err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

func SetNotes(ctx context.Context, api *helper.API, nameOrID, notes string) (*Switch, error) {
	s, err := Get(ctx, api, nameOrID)
	if err != nil {
		return nil, err
	}
	if err = s.modify(ctx, api, "Notes", notes); err != nil {
		return nil, err
	}
	s.Notes = notes
	return s, nil
}

func Delete(ctx context.Context, api *helper.API, nameOrID string) error {
	s, err := Get(ctx, api, nameOrID)
	if err != nil {
		return err
	}
	logging.L().Info(fmt.Sprintf("删除虚拟交换机[%s]", s.Name))
	_, err = api.Call(ctx, helper.SwitchService, "DestroySystem", hostctl.Params{"AffectedSystem": s.path})
	return err
}
