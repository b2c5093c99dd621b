package hyperv

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper/clus"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/job"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/protocol"
	"strings"
)

// withCluster 打开集群执行f，结束后释放集群句柄
func (hv *HyperV) withCluster(ctx context.Context, f func(c *clus.Cluster) error) error {
	return hv.withNamedCluster(ctx, hv.cluster, f)
}

func (hv *HyperV) withNamedCluster(ctx context.Context, name string, f func(c *clus.Cluster) error) error {
	c, err := clus.Open(ctx, hv.Api, name)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Release(); err != nil {
			logging.L().Warnf("释放集群[%s]句柄失败: %v", c.Name(), err)
		}
	}()
	return f(c)
}

func (hv *HyperV) ClusterInfo(ctx context.Context) (*protocol.ClusterInfo, error) {
	return hv.clusterInfo(ctx, hv.cluster)
}

// ConnectCluster 打开指定名称的集群并返回概要，名称不匹配时为NotFound
func (hv *HyperV) ConnectCluster(ctx context.Context, name string) (*protocol.ClusterInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Newf(errs.InvalidParameter, "connect cluster", "集群名称不能为空")
	}
	return hv.clusterInfo(ctx, name)
}

func (hv *HyperV) clusterInfo(ctx context.Context, name string) (*protocol.ClusterInfo, error) {
	var info *protocol.ClusterInfo
	err := hv.withNamedCluster(ctx, name, func(c *clus.Cluster) error {
		i, err := c.Info(ctx)
		if err != nil {
			return err
		}
		info = &protocol.ClusterInfo{
			Name:          i.Name,
			NodeCount:     i.NodeCount,
			GroupCount:    i.GroupCount,
			ResourceCount: i.ResourceCount,
		}
		return nil
	})
	return info, err
}

func nodeInfo(ctx context.Context, n *clus.Node) (protocol.NodeInfo, error) {
	st, err := n.State(ctx)
	if err != nil {
		return protocol.NodeInfo{}, err
	}
	return protocol.NodeInfo{Name: n.Name(), State: st.String(), Code: st.Code}, nil
}

func groupInfo(ctx context.Context, g *clus.Group) (protocol.GroupInfo, error) {
	st, err := g.State(ctx)
	if err != nil {
		return protocol.GroupInfo{}, err
	}
	return protocol.GroupInfo{Name: g.Name(), State: st.String(), Code: st.Code, Owner: st.Owner}, nil
}

func resourceInfo(ctx context.Context, r *clus.Resource) (protocol.ResourceInfo, error) {
	st, err := r.State(ctx)
	if err != nil {
		return protocol.ResourceInfo{}, err
	}
	t, err := r.Type(ctx)
	if err != nil {
		return protocol.ResourceInfo{}, err
	}
	return protocol.ResourceInfo{Name: r.Name(), Type: t, State: st.String(), Code: st.Code, Owner: st.Owner}, nil
}

func (hv *HyperV) QueryNodes(ctx context.Context) ([]protocol.NodeInfo, error) {
	if v := hv.Cache.GetNodes(); v != nil {
		logging.L().Debug("本次查询使用了缓存")
		return v, nil
	}
	var ret []protocol.NodeInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		nodes, err := c.Nodes(ctx)
		defer clus.ReleaseAll(nodes)
		if err != nil {
			return err
		}
		ret = make([]protocol.NodeInfo, 0, len(nodes))
		for _, n := range nodes {
			info, err := nodeInfo(ctx, n)
			if err != nil {
				return err
			}
			ret = append(ret, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	hv.Cache.CacheNodes(ret)
	return ret, nil
}

func (hv *HyperV) GetNode(ctx context.Context, name string) (*protocol.NodeInfo, error) {
	var ret protocol.NodeInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		n, err := c.OpenNode(ctx, name)
		if err != nil {
			return err
		}
		defer n.Release()
		ret, err = nodeInfo(ctx, n)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (hv *HyperV) PauseNode(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.nodeControl(ctx, name, "pause", (*clus.Node).Pause)
}

func (hv *HyperV) ResumeNode(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.nodeControl(ctx, name, "resume", (*clus.Node).Resume)
}

func (hv *HyperV) nodeControl(ctx context.Context, name, action string, f func(*clus.Node, context.Context) (job.Outcome, error)) (*protocol.OperationResult, error) {
	res := &protocol.OperationResult{Target: name, Action: action}
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		n, err := c.OpenNode(ctx, name)
		if err != nil {
			return err
		}
		defer n.Release()
		out, err := f(n, ctx)
		res.Outcome = out.String()
		return err
	})
	if err != nil {
		logging.L().Errorf("节点[%s]执行%s失败: %v", name, action, err)
		return nil, err
	}
	hv.Cache.Clean(cache.Nodes)
	return res, nil
}

func (hv *HyperV) QueryGroups(ctx context.Context) ([]protocol.GroupInfo, error) {
	if v := hv.Cache.GetGroups(); v != nil {
		logging.L().Debug("本次查询使用了缓存")
		return v, nil
	}
	var ret []protocol.GroupInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		groups, err := c.Groups(ctx)
		defer clus.ReleaseAll(groups)
		if err != nil {
			return err
		}
		ret = make([]protocol.GroupInfo, 0, len(groups))
		for _, g := range groups {
			info, err := groupInfo(ctx, g)
			if err != nil {
				return err
			}
			ret = append(ret, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	hv.Cache.CacheGroups(ret)
	return ret, nil
}

func (hv *HyperV) GetGroup(ctx context.Context, name string) (*protocol.GroupInfo, error) {
	var ret protocol.GroupInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		g, err := c.OpenGroup(ctx, name)
		if err != nil {
			return err
		}
		defer g.Release()
		ret, err = groupInfo(ctx, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (hv *HyperV) OnlineGroup(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.groupControl(ctx, name, "online", (*clus.Group).Online)
}

func (hv *HyperV) OfflineGroup(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.groupControl(ctx, name, "offline", (*clus.Group).Offline)
}

func (hv *HyperV) groupControl(ctx context.Context, name, action string, f func(*clus.Group, context.Context) (job.Outcome, error)) (*protocol.OperationResult, error) {
	res := &protocol.OperationResult{Target: name, Action: action}
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		g, err := c.OpenGroup(ctx, name)
		if err != nil {
			return err
		}
		defer g.Release()
		out, err := f(g, ctx)
		res.Outcome = out.String()
		return err
	})
	if err != nil {
		logging.L().Errorf("组[%s]执行%s失败: %v", name, action, err)
		return nil, err
	}
	hv.Cache.Clean(cache.Groups)
	return res, nil
}

// MoveGroup 把组迁移到node。已归属node时跳过且不调用宿主机；
// 组必须在线或部分在线；提交后不等待迁移完成
func (hv *HyperV) MoveGroup(ctx context.Context, name, node string) (*protocol.OperationResult, error) {
	res := &protocol.OperationResult{Target: name, Action: "move"}
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		g, err := c.OpenGroup(ctx, name)
		if err != nil {
			return err
		}
		defer g.Release()
		st, err := g.State(ctx)
		if err != nil {
			return err
		}
		if st.Owner != "" && strings.EqualFold(st.Owner, node) {
			logging.L().Debug(fmt.Sprintf("组[%s]已在节点[%s]上，跳过迁移", name, node))
			res.Outcome = job.Skipped.String()
			return nil
		}
		if st.State != clus.GroupOnline && st.State != clus.GroupPartialOnline {
			return errs.Newf(errs.InvalidState, "move group", "组[%s]当前状态为%s，只能迁移在线的组", name, st)
		}
		n, err := c.OpenNode(ctx, node)
		if err != nil {
			return err
		}
		defer n.Release()
		out, err := g.Move(ctx, n)
		res.Outcome = out.String()
		return err
	})
	if err != nil {
		logging.L().Errorf("组[%s]迁移到节点[%s]失败: %v", name, node, err)
		return nil, err
	}
	hv.Cache.Clean(cache.Groups)
	return res, nil
}

func (hv *HyperV) QueryResources(ctx context.Context) ([]protocol.ResourceInfo, error) {
	var ret []protocol.ResourceInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		resources, err := c.Resources(ctx)
		defer clus.ReleaseAll(resources)
		if err != nil {
			return err
		}
		ret = make([]protocol.ResourceInfo, 0, len(resources))
		for _, r := range resources {
			info, err := resourceInfo(ctx, r)
			if err != nil {
				return err
			}
			ret = append(ret, info)
		}
		return nil
	})
	return ret, err
}

func (hv *HyperV) GetResource(ctx context.Context, name string) (*protocol.ResourceInfo, error) {
	var ret protocol.ResourceInfo
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		r, err := c.OpenResource(ctx, name)
		if err != nil {
			return err
		}
		defer r.Release()
		ret, err = resourceInfo(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (hv *HyperV) OnlineResource(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.resourceControl(ctx, name, "online", (*clus.Resource).Online)
}

func (hv *HyperV) OfflineResource(ctx context.Context, name string) (*protocol.OperationResult, error) {
	return hv.resourceControl(ctx, name, "offline", (*clus.Resource).Offline)
}

// SetSharedVolumeMaintenance 打开或关闭CSV维护模式
func (hv *HyperV) SetSharedVolumeMaintenance(ctx context.Context, name string, on bool) (*protocol.OperationResult, error) {
	action := "maintenance off"
	if on {
		action = "maintenance on"
	}
	return hv.resourceControl(ctx, name, action, func(r *clus.Resource, ctx context.Context) (job.Outcome, error) {
		return r.SetMaintenance(ctx, on)
	})
}

func (hv *HyperV) resourceControl(ctx context.Context, name, action string, f func(*clus.Resource, context.Context) (job.Outcome, error)) (*protocol.OperationResult, error) {
	res := &protocol.OperationResult{Target: name, Action: action}
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		r, err := c.OpenResource(ctx, name)
		if err != nil {
			return err
		}
		defer r.Release()
		out, err := f(r, ctx)
		res.Outcome = out.String()
		return err
	})
	if err != nil {
		logging.L().Errorf("资源[%s]执行%s失败: %v", name, action, err)
		return nil, err
	}
	hv.Cache.Clean(cache.Groups)
	return res, nil
}

func (hv *HyperV) SharedVolumes(ctx context.Context) ([]*clus.SharedVolume, error) {
	var ret []*clus.SharedVolume
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		var err error
		ret, err = c.SharedVolumes(ctx)
		return err
	})
	if ret == nil {
		ret = []*clus.SharedVolume{}
	}
	return ret, err
}

func (hv *HyperV) CheckSharedVolumePath(ctx context.Context, path string) (*protocol.SharedVolumePathCheck, error) {
	var on bool
	err := hv.withCluster(ctx, func(c *clus.Cluster) error {
		var err error
		on, err = c.IsPathOnSharedVolume(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &protocol.SharedVolumePathCheck{Path: path, OnSharedVolume: on}, nil
}
