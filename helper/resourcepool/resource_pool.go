// Package resourcepool 资源分配能力协商。
//
// 为虚拟机添加一类资源时依次执行：
// 找到该子类型的原始资源池、取得资源池的分配能力、在能力上找到ValueRole为0的默认模板，
// 最后克隆模板、覆盖字段并通过AddResourceSettings提交。
// 前三步任何一步失败都返回各自的错误类型，且不会修改宿主机。
package resourcepool

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

// 资源子类型
const (
	SubtypeGpuPartition = "Microsoft:Hyper-V:Gpu Partition"
	SubtypePciExpress   = "Microsoft:Hyper-V:Pci Express"
	SubtypeDiskDrive    = "Microsoft:Hyper-V:Synthetic Disk Drive"
	SubtypeDvdDrive     = "Microsoft:Hyper-V:Synthetic DVD Drive"
	SubtypeVirtualDisk  = "Microsoft:Hyper-V:Virtual Hard Disk"
	SubtypeVirtualDvd   = "Microsoft:Hyper-V:Virtual CD/DVD Disk"
)

type ValueRole uint16

const (
	RoleDefault ValueRole = iota
	RoleSupported
	RoleMinimum
	RoleMaximum
	RoleIncrement
)

type Pool struct {
	ID         string `json:"id"`
	Subtype    string `json:"subtype"`
	Primordial bool   `json:"primordial"`
}

// List 列出所有原始资源池
func List(ctx context.Context, api *helper.API) ([]Pool, error) {
	logging.L().Debug("查询所有原始资源池")
	objs, err := handle.QueryAll(ctx, api.Host, "SELECT * FROM Msvm_ResourcePool WHERE Primordial = TRUE")
	if err != nil {
		return nil, err
	}
	ret := make([]Pool, 0, len(objs))
	for _, o := range objs {
		ret = append(ret, Pool{ID: o.String("InstanceID"), Subtype: o.String("ResourceSubType"), Primordial: o.Bool("Primordial")})
	}
	return ret, nil
}

// FindPool 第一步：子类型对应的原始资源池
func FindPool(ctx context.Context, host hostctl.Management, subtype string) (*hostctl.Object, error) {
	q := fmt.Sprintf("SELECT * FROM Msvm_ResourcePool WHERE ResourceSubType = %s AND Primordial = TRUE", utils.Quote(subtype))
	pool, err := handle.QueryFirst(ctx, host, q)
	if errs.IsKind(err, errs.NotFound) {
		return nil, &errs.Error{Kind: errs.PoolNotFound, Op: "find pool", Target: subtype}
	}
	return pool, err
}

// FindCapabilities 第二步：资源池的分配能力
func FindCapabilities(ctx context.Context, host hostctl.Management, pool *hostctl.Object) (*hostctl.Object, error) {
	q := fmt.Sprintf("ASSOCIATORS OF {%s} WHERE AssocClass = Msvm_ElementCapabilities ResultClass = Msvm_AllocationCapabilities", pool.Path)
	caps, err := handle.QueryFirst(ctx, host, q)
	if errs.IsKind(err, errs.NotFound) {
		return nil, &errs.Error{Kind: errs.CapabilitiesNotFound, Op: "find capabilities", Target: pool.String("ResourceSubType")}
	}
	return caps, err
}

// FindDefaultTemplate 第三步：只接受ValueRole为0的模板，其他角色的模板不能直接用于创建资源
func FindDefaultTemplate(ctx context.Context, host hostctl.Management, caps *hostctl.Object) (*hostctl.Object, error) {
	q := fmt.Sprintf("REFERENCES OF {%s} WHERE ResultClass = Msvm_SettingsDefineCapabilities", caps.Path)
	refs, err := handle.QueryAll(ctx, host, q)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if !ref.Has("ValueRole") || ValueRole(ref.Uint16("ValueRole")) != RoleDefault {
			continue
		}
		tmpl, err := host.GetObject(ctx, ref.String("PartComponent"))
		if err != nil {
			err = errs.FromHost("get template", ref.String("PartComponent"), err)
			if errs.IsKind(err, errs.NotFound) {
				break
			}
			return nil, err
		}
		return tmpl, nil
	}
	return nil, &errs.Error{Kind: errs.DefaultTemplateNotFound, Op: "find default template", Target: caps.String("ResourceSubType")}
}

// DefaultSettings 前三步，返回默认模板的副本
func DefaultSettings(ctx context.Context, host hostctl.Management, subtype string) (*hostctl.Object, error) {
	pool, err := FindPool(ctx, host, subtype)
	if err != nil {
		return nil, err
	}
	caps, err := FindCapabilities(ctx, host, pool)
	if err != nil {
		return nil, err
	}
	tmpl, err := FindDefaultTemplate(ctx, host, caps)
	if err != nil {
		return nil, err
	}
	settings := tmpl.Clone()
	settings.Path = ""
	delete(settings.Props, "InstanceID")
	return settings, nil
}

// Build 生成待提交的资源设置：默认模板加上覆盖字段，Parent未指定时为虚拟机设置
func Build(ctx context.Context, host hostctl.Management, settingsPath, subtype string, overrides hostctl.Params) (*hostctl.Object, error) {
	s, err := DefaultSettings(ctx, host, subtype)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		s.Set(k, v)
	}
	if s.String("Parent") == "" {
		s.Set("Parent", settingsPath)
	}
	return s, nil
}

// Add 第四步：提交AddResourceSettings，不等待作业
func Add(ctx context.Context, api *helper.API, settingsPath, subtype string, overrides hostctl.Params) (*job.Submission, error) {
	logging.L().Debug(fmt.Sprintf("为[%s]添加资源[%s]", settingsPath, subtype))
	s, err := Build(ctx, api.Host, settingsPath, subtype, overrides)
	if err != nil {
		logging.L().Errorf("资源[%s]能力协商失败: %v", subtype, err)
		return nil, err
	}
	return api.Invoke(ctx, helper.ManagementService, "AddResourceSettings", hostctl.Params{
		"AffectedConfiguration": settingsPath,
		"ResourceSettings":      []*hostctl.Object{s},
	})
}

// AddAndWait 添加资源并等待完成，返回新资源的路径
func AddAndWait(ctx context.Context, api *helper.API, settingsPath, subtype string, overrides hostctl.Params) (string, error) {
	sub, err := Add(ctx, api, settingsPath, subtype, overrides)
	if err != nil {
		return "", err
	}
	out, err := api.Tracker.Run(ctx, sub, 0)
	if err != nil {
		return "", err
	}
	if created := out.Strings("ResultingResourceSettings"); len(created) > 0 {
		return created[0], nil
	}
	return "", nil
}

// Remove 删除资源设置并等待完成
func Remove(ctx context.Context, api *helper.API, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	logging.L().Debug(fmt.Sprintf("删除资源%v", paths))
	_, err := api.Call(ctx, helper.ManagementService, "RemoveResourceSettings", hostctl.Params{"ResourceSettings": paths})
	return err
}

// Modify 修改已有资源设置并等待完成
func Modify(ctx context.Context, api *helper.API, settings ...*hostctl.Object) error {
	if len(settings) == 0 {
		return nil
	}
	_, err := api.Call(ctx, helper.ManagementService, "ModifyResourceSettings", hostctl.Params{"ResourceSettings": settings})
	return err
}
