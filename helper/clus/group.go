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

// Group 故障转移组
type Group struct {
	h *handle.Handle
}

func (g *Group) Name() string {
	return g.h.Name()
}

func (g *Group) Release() error {
	return g.h.Release()
}

func (g *Group) State(ctx context.Context) (GroupStatus, error) {
	raw, err := g.h.Raw()
	if err != nil {
		return GroupStatus{}, err
	}
	code, owner, err := g.h.Host().State(ctx, raw)
	if err != nil {
		return GroupStatus{}, errs.FromHost("group state", g.Name(), err)
	}
	return DecodeGroup(code, owner), nil
}

// Online 组已在线时跳过，Pending状态下不能操作
func (g *Group) Online(ctx context.Context) (job.Outcome, error) {
	st, err := g.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	switch st.State {
	case GroupOnline:
		return job.Skipped, nil
	case GroupPending:
		return job.Completed, errs.Newf(errs.InvalidState, "online group", "组[%s]正在变更状态", g.Name())
	}
	return g.control(ctx, hostctl.ControlOnline, nil)
}

func (g *Group) Offline(ctx context.Context) (job.Outcome, error) {
	st, err := g.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	switch st.State {
	case GroupOffline:
		return job.Skipped, nil
	case GroupPending:
		return job.Completed, errs.Newf(errs.InvalidState, "offline group", "组[%s]正在变更状态", g.Name())
	}
	return g.control(ctx, hostctl.ControlOffline, nil)
}

// Move 提交迁移，不等待完成。调用方需要自行检查状态与归属
func (g *Group) Move(ctx context.Context, node *Node) (job.Outcome, error) {
	target, err := node.h.Raw()
	if err != nil {
		return job.Completed, err
	}
	return g.control(ctx, hostctl.ControlMove, &target)
}

func (g *Group) control(ctx context.Context, ctl hostctl.Control, target *hostctl.Handle) (job.Outcome, error) {
	raw, err := g.h.Raw()
	if err != nil {
		return job.Completed, err
	}
	t := hostctl.InvalidHandle
	if target != nil {
		t = *target
	}
	logging.L().Debug(fmt.Sprintf("组[%s]执行%s", g.Name(), ctl))
	return job.Decode(ctl.String()+" group", g.Name(), g.h.Host().Control(ctx, raw, ctl, t))
}
