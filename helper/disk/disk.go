// Package disk 虚拟硬盘文件的创建、查询与维护。
package disk

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hostctl"
	"strings"
)

const settingClass = "Msvm_VirtualHardDiskSettingData"

type Info struct {
	Path               string `json:"path"`
	Type               string `json:"type"`
	Format             string `json:"format"`
	MaxInternalSize    uint64 `json:"maxInternalSize"`
	FileSize           uint64 `json:"fileSize"`
	ParentPath         string `json:"parentPath,omitempty"`
	BlockSize          uint32 `json:"blockSize"`
	LogicalSectorSize  uint32 `json:"logicalSectorSize"`
	PhysicalSectorSize uint32 `json:"physicalSectorSize"`
	Attached           bool   `json:"attached"`
}

type CreateSpec struct {
	Path string
	Type string
	// Size 如"40GB"，差异磁盘忽略
	Size       string
	ParentPath string
}

func (s *CreateSpec) settings() (*hostctl.Object, error) {
	format := FormatOfPath(s.Path)
	if format == "" {
		return nil, errs.Newf(errs.InvalidParameter, "create vhd", "磁盘文件扩展名必须是.vhd或.vhdx: %s", s.Path)
	}
	if s.Type == "" {
		s.Type = TypeDynamic
	}
	t, ok := TypeMapping[strings.ToLower(s.Type)]
	if !ok {
		return nil, errs.Newf(errs.InvalidParameter, "create vhd", "不支持的磁盘类型: %s", s.Type)
	}
	o := hostctl.NewObject(settingClass).
		Set("Path", s.Path).
		Set("Type", t.Code).
		Set("Format", Formats[format])
	if t.NeedParent {
		if s.ParentPath == "" {
			return nil, errs.Newf(errs.InvalidParameter, "create vhd", "差异磁盘需要父磁盘")
		}
		return o.Set("ParentPath", s.ParentPath), nil
	}
	size, err := utils.ParseSize(s.Size)
	if err != nil || size == 0 {
		return nil, errs.Newf(errs.InvalidParameter, "create vhd", "无效的磁盘大小: %s", s.Size)
	}
	if format == FormatVhd && size > maxVhdSize {
		return nil, errs.Newf(errs.InvalidParameter, "create vhd", "vhd格式的磁盘不能超过%s", utils.HumanSize(maxVhdSize))
	}
	return o.Set("MaxInternalSize", size), nil
}

// Create 创建磁盘文件并等待完成
func Create(ctx context.Context, api *helper.API, spec CreateSpec) (*Info, error) {
	settings, err := spec.settings()
	if err != nil {
		return nil, err
	}
	logging.L().Info(fmt.Sprintf("创建%s磁盘[%s]", spec.Type, spec.Path))
	if _, err := api.Call(ctx, helper.ImageService, "CreateVirtualHardDisk", hostctl.Params{"VirtualDiskSettingData": settings}); err != nil {
		logging.L().Errorf("创建磁盘[%s]失败: %v", spec.Path, err)
		return nil, err
	}
	return Get(ctx, api, spec.Path)
}

// CreateDifferencing 基于parent创建差异磁盘
func CreateDifferencing(ctx context.Context, api *helper.API, path, parent string) (*Info, error) {
	return Create(ctx, api, CreateSpec{Path: path, Type: TypeDifferencing, ParentPath: parent})
}

func Get(ctx context.Context, api *helper.API, path string) (*Info, error) {
	if path == "" {
		return nil, errs.Newf(errs.InvalidParameter, "get vhd", "磁盘路径不能为空")
	}
	out, err := api.Call(ctx, helper.ImageService, "GetVirtualHardDiskSettingData", hostctl.Params{"Path": path})
	if err != nil {
		return nil, err
	}
	sd := out.Object("SettingData")
	if sd == nil {
		return nil, errs.Newf(errs.OperationFailed, "get vhd", "主机没有返回磁盘[%s]的设置", path)
	}
	return &Info{
		Path:               sd.String("Path"),
		Type:               GetType(sd.Uint16("Type")),
		Format:             GetFormat(sd.Uint16("Format")),
		MaxInternalSize:    sd.Uint64("MaxInternalSize"),
		FileSize:           sd.Uint64("FileSize"),
		ParentPath:         sd.String("ParentPath"),
		BlockSize:          sd.Uint32("BlockSize"),
		LogicalSectorSize:  sd.Uint32("LogicalSectorSize"),
		PhysicalSectorSize: sd.Uint32("PhysicalSectorSize"),
		Attached:           sd.Bool("Attached"),
	}, nil
}

// Resize 只支持扩容
func Resize(ctx context.Context, api *helper.API, path, size string) (*Info, error) {
	n, err := utils.ParseSize(size)
	if err != nil || n == 0 {
		return nil, errs.Newf(errs.InvalidParameter, "resize vhd", "无效的磁盘大小: %s", size)
	}
	info, err := Get(ctx, api, path)
	if err != nil {
		return nil, err
	}
	if n < info.MaxInternalSize {
		return nil, errs.Newf(errs.InvalidParameter, "resize vhd", "不支持缩小磁盘: %s < %s", utils.HumanSize(n), utils.HumanSize(info.MaxInternalSize))
	}
	logging.L().Info(fmt.Sprintf("磁盘[%s]扩容到%s", path, utils.HumanSize(n)))
	if _, err := api.Call(ctx, helper.ImageService, "ResizeVirtualHardDisk", hostctl.Params{"Path": path, "MaxInternalSize": n}); err != nil {
		return nil, err
	}
	return Get(ctx, api, path)
}

// Compact 压缩动态或差异磁盘，磁盘不能处于挂载状态
func Compact(ctx context.Context, api *helper.API, path string) (*Info, error) {
	info, err := Get(ctx, api, path)
	if err != nil {
		return nil, err
	}
	if info.Type == TypeFixed {
		return nil, errs.Newf(errs.InvalidParameter, "compact vhd", "固定大小的磁盘不能压缩")
	}
	if info.Attached {
		return nil, errs.Newf(errs.InvalidState, "compact vhd", "磁盘[%s]已挂载，不能压缩", path)
	}
	if _, err := api.Call(ctx, helper.ImageService, "CompactVirtualHardDisk", hostctl.Params{"Path": path, "Mode": uint16(0)}); err != nil {
		return nil, err
	}
	return Get(ctx, api, path)
}

// Mount 在主机上挂载磁盘文件
func Mount(ctx context.Context, api *helper.API, path string) error {
	_, err := api.Call(ctx, helper.ImageService, "AttachVirtualHardDisk", hostctl.Params{"Path": path, "AssignDriveLetter": true, "ReadOnly": false})
	return err
}

func Dismount(ctx context.Context, api *helper.API, path string) error {
	_, err := api.Call(ctx, helper.ImageService, "DetachVirtualHardDisk", hostctl.Params{"Path": path})
	return err
}
