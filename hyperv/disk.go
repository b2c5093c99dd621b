package hyperv

import (
	"context"
	"hyperv-facade/helper/disk"
	"hyperv-facade/hyperv/protocol"
)

func (hv *HyperV) CreateVhd(ctx context.Context, p protocol.VhdReq) (*disk.Info, error) {
	return disk.Create(ctx, hv.Api, disk.CreateSpec{
		Path:       p.Path,
		Type:       p.Type,
		Size:       p.Size,
		ParentPath: p.ParentPath,
	})
}

func (hv *HyperV) CreateDifferencingVhd(ctx context.Context, path, parent string) (*disk.Info, error) {
	return disk.CreateDifferencing(ctx, hv.Api, path, parent)
}

func (hv *HyperV) GetVhd(ctx context.Context, path string) (*disk.Info, error) {
	return disk.Get(ctx, hv.Api, path)
}

func (hv *HyperV) ResizeVhd(ctx context.Context, p protocol.VhdResizeReq) (*disk.Info, error) {
	return disk.Resize(ctx, hv.Api, p.Path, p.Size)
}

func (hv *HyperV) CompactVhd(ctx context.Context, path string) (*disk.Info, error) {
	return disk.Compact(ctx, hv.Api, path)
}

func (hv *HyperV) MountVhd(ctx context.Context, path string) error {
	return disk.Mount(ctx, hv.Api, path)
}

func (hv *HyperV) DismountVhd(ctx context.Context, path string) error {
	return disk.Dismount(ctx, hv.Api, path)
}
