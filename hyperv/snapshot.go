package hyperv

import (
	"context"
	"hyperv-facade/helper/snapshot"
	"hyperv-facade/helper/virtualmachine"
)

func (hv *HyperV) QuerySnapshots(ctx context.Context, vmNameOrID string) ([]*snapshot.Snapshot, error) {
	vm, err := hv.getVirtualMachine(ctx, vmNameOrID)
	if err != nil {
		return nil, err
	}
	return snapshot.List(ctx, vm)
}

func (hv *HyperV) GetSnapshot(ctx context.Context, vmNameOrID, nameOrID string) (*snapshot.Snapshot, error) {
	vm, err := hv.getVirtualMachine(ctx, vmNameOrID)
	if err != nil {
		return nil, err
	}
	return snapshot.Get(ctx, vm, nameOrID)
}

func (hv *HyperV) CreateSnapshot(ctx context.Context, vmNameOrID, name string) (*snapshot.Snapshot, error) {
	var ret *snapshot.Snapshot
	err := hv.withVirtualMachine(ctx, vmNameOrID, "创建检查点", func(vm *virtualmachine.VirtualMachine) error {
		var err error
		ret, err = snapshot.Create(ctx, vm, name)
		return err
	})
	return ret, err
}

func (hv *HyperV) RenameSnapshot(ctx context.Context, vmNameOrID, nameOrID, name string) (*snapshot.Snapshot, error) {
	var ret *snapshot.Snapshot
	err := hv.withVirtualMachine(ctx, vmNameOrID, "重命名检查点", func(vm *virtualmachine.VirtualMachine) error {
		var err error
		ret, err = snapshot.Rename(ctx, vm, nameOrID, name)
		return err
	})
	return ret, err
}

func (hv *HyperV) ApplySnapshot(ctx context.Context, vmNameOrID, nameOrID string) error {
	return hv.withVirtualMachine(ctx, vmNameOrID, "恢复检查点", func(vm *virtualmachine.VirtualMachine) error {
		return snapshot.Apply(ctx, vm, nameOrID)
	})
}

func (hv *HyperV) DeleteSnapshot(ctx context.Context, vmNameOrID, nameOrID string) error {
	return hv.withVirtualMachine(ctx, vmNameOrID, "删除检查点", func(vm *virtualmachine.VirtualMachine) error {
		return snapshot.Delete(ctx, vm, nameOrID)
	})
}
