// Package clus 故障转移集群对象：集群、节点、组、资源与CSV。
//
// 各对象独占一个宿主机句柄，用完需要Release。控制调用的状态码统一由
// job.Decode解码，997表示已被接受，不是错误。
package clus

import (
	"context"
	"fmt"
	"hyperv-facade/app/logging"
	"hyperv-facade/helper"
	"hyperv-facade/helper/errs"
	"hyperv-facade/helper/handle"
	"hyperv-facade/hostctl"
	"strings"
)

type Cluster struct {
	h    *handle.Handle
	host hostctl.Cluster
}

// Open 打开集群，name为空时打开本机所在集群
func Open(ctx context.Context, api *helper.API, name string) (*Cluster, error) {
	logging.L().Debug(fmt.Sprintf("打开集群[%s]", name))
	h, err := handle.OpenCluster(ctx, api.Host, name)
	if err != nil {
		return nil, err
	}
	return &Cluster{h: h, host: api.Host}, nil
}

func (c *Cluster) Name() string {
	return c.h.Name()
}

func (c *Cluster) Release() error {
	return c.h.Release()
}

func (c *Cluster) raw() (hostctl.Handle, error) {
	return c.h.Raw()
}

func (c *Cluster) open(ctx context.Context, kind hostctl.Kind, name string) (*handle.Handle, error) {
	raw, err := c.raw()
	if err != nil {
		return nil, err
	}
	return handle.Open(ctx, c.host, raw, kind, name)
}

func (c *Cluster) OpenNode(ctx context.Context, name string) (*Node, error) {
	h, err := c.open(ctx, hostctl.KindNode, name)
	if err != nil {
		return nil, err
	}
	return &Node{h: h}, nil
}

func (c *Cluster) OpenGroup(ctx context.Context, name string) (*Group, error) {
	h, err := c.open(ctx, hostctl.KindGroup, name)
	if err != nil {
		return nil, err
	}
	return &Group{h: h}, nil
}

func (c *Cluster) OpenResource(ctx context.Context, name string) (*Resource, error) {
	h, err := c.open(ctx, hostctl.KindResource, name)
	if err != nil {
		return nil, err
	}
	return &Resource{h: h}, nil
}

// Nodes 枚举所有节点，枚举后消失的节点被跳过
func (c *Cluster) Nodes(ctx context.Context) ([]*Node, error) {
	hs, err := handle.OpenAll(ctx, c.h, hostctl.KindNode)
	ret := make([]*Node, 0, len(hs))
	for _, h := range hs {
		ret = append(ret, &Node{h: h})
	}
	return ret, err
}

func (c *Cluster) Groups(ctx context.Context) ([]*Group, error) {
	hs, err := handle.OpenAll(ctx, c.h, hostctl.KindGroup)
	ret := make([]*Group, 0, len(hs))
	for _, h := range hs {
		ret = append(ret, &Group{h: h})
	}
	return ret, err
}

func (c *Cluster) Resources(ctx context.Context) ([]*Resource, error) {
	hs, err := handle.OpenAll(ctx, c.h, hostctl.KindResource)
	ret := make([]*Resource, 0, len(hs))
	for _, h := range hs {
		ret = append(ret, &Resource{h: h})
	}
	return ret, err
}

// Names 只枚举名称，不打开句柄
func (c *Cluster) Names(ctx context.Context, kind hostctl.Kind) ([]string, error) {
	cursor, err := handle.Enumerate(ctx, c.h, kind)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()
	var names []string
	for {
		name, ok, err := cursor.Next(ctx)
		if err != nil {
			return names, err
		}
		if !ok {
			return names, nil
		}
		names = append(names, name)
	}
}

type Info struct {
	Name          string `json:"name"`
	NodeCount     int    `json:"nodeCount"`
	GroupCount    int    `json:"groupCount"`
	ResourceCount int    `json:"resourceCount"`
}

func (c *Cluster) Info(ctx context.Context) (*Info, error) {
	info := &Info{Name: c.Name()}
	for _, k := range []hostctl.Kind{hostctl.KindNode, hostctl.KindGroup, hostctl.KindResource} {
		names, err := c.Names(ctx, k)
		if err != nil {
			return nil, err
		}
		switch k {
		case hostctl.KindNode:
			info.NodeCount = len(names)
		case hostctl.KindGroup:
			info.GroupCount = len(names)
		case hostctl.KindResource:
			info.ResourceCount = len(names)
		}
	}
	return info, nil
}

// SharedVolumes 列出所有CSV资源
func (c *Cluster) SharedVolumes(ctx context.Context) ([]*SharedVolume, error) {
	resources, err := c.Resources(ctx)
	defer ReleaseAll(resources)
	if err != nil {
		return nil, err
	}
	var ret []*SharedVolume
	for _, r := range resources {
		v, err := r.SharedVolume(ctx)
		if errs.IsKind(err, errs.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// IsPathOnSharedVolume 判断路径是否位于CSV上
func (c *Cluster) IsPathOnSharedVolume(ctx context.Context, path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, errs.Newf(errs.InvalidParameter, "check path", "路径不能为空")
	}
	if _, err := c.raw(); err != nil {
		return false, err
	}
	ok, err := c.host.IsPathOnSharedVolume(ctx, path)
	if err != nil {
		return false, errs.FromHost("check path", path, err)
	}
	return ok, nil
}

type releaser interface {
	Release() error
}

// ReleaseAll 释放一组对象，忽略已释放的
func ReleaseAll[T releaser](items []T) {
	for _, it := range items {
		if err := it.Release(); err != nil && !errs.IsKind(err, errs.InvalidState) {
			logging.L().Warnf("释放集群句柄失败: %v", err)
		}
	}
}
