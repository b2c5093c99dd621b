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

type Node struct {
	h *handle.Handle
}

func (n *Node) Name() string {
	return n.h.Name()
}

func (n *Node) Release() error {
	return n.h.Release()
}

func (n *Node) State(ctx context.Context) (NodeStatus, error) {
	raw, err := n.h.Raw()
	if err != nil {
		return NodeStatus{}, err
	}
	code, _, err := n.h.Host().State(ctx, raw)
	if err != nil {
		return NodeStatus{}, errs.FromHost("node state", n.Name(), err)
	}
	return DecodeNode(code), nil
}

// Pause 暂停节点，已运行的组不受影响，只是不再接收新的组
func (n *Node) Pause(ctx context.Context) (job.Outcome, error) {
	st, err := n.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	switch st.State {
	case NodePaused:
		return job.Skipped, nil
	case NodeUp:
	default:
		return job.Completed, errs.Newf(errs.InvalidState, "pause node", "节点[%s]状态为%s，不能暂停", n.Name(), st)
	}
	return n.control(ctx, hostctl.ControlPause)
}

func (n *Node) Resume(ctx context.Context) (job.Outcome, error) {
	st, err := n.State(ctx)
	if err != nil {
		return job.Completed, err
	}
	switch st.State {
	case NodeUp:
		return job.Skipped, nil
	case NodePaused:
	default:
		return job.Completed, errs.Newf(errs.InvalidState, "resume node", "节点[%s]状态为%s，不能恢复", n.Name(), st)
	}
	return n.control(ctx, hostctl.ControlResume)
}

func (n *Node) control(ctx context.Context, ctl hostctl.Control) (job.Outcome, error) {
	raw, err := n.h.Raw()
	if err != nil {
		return job.Completed, err
	}
	logging.L().Debug(fmt.Sprintf("节点[%s]执行%s", n.Name(), ctl))
	return job.Decode(ctl.String()+" node", n.Name(), n.h.Host().Control(ctx, raw, ctl, hostctl.InvalidHandle))
}
