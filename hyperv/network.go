package hyperv

import (
	"context"
	"hyperv-facade/helper/network"
	"hyperv-facade/hyperv/cache"
	"hyperv-facade/hyperv/protocol"
)

func (hv *HyperV) QuerySwitches(ctx context.Context) ([]*network.Switch, error) {
	if v := hv.Cache.GetSwitches(); v != nil {
		return v, nil
	}
	ss, err := network.List(ctx, hv.Api)
	if err != nil {
		return nil, err
	}
	hv.Cache.CacheSwitches(ss)
	return ss, nil
}

func (hv *HyperV) GetSwitch(ctx context.Context, nameOrID string) (*network.Switch, error) {
	return network.Get(ctx, hv.Api, nameOrID)
}

func (hv *HyperV) CreateSwitch(ctx context.Context, p protocol.SwitchReq) (*network.Switch, error) {
	s, err := network.Create(ctx, hv.Api, network.CreateSpec{
		Name:       p.Name,
		Type:       p.Type,
		NetAdapter: p.NetAdapter,
		Notes:      p.Notes,
	})
	if err != nil {
		return nil, err
	}
	hv.Cache.Clean(cache.Switches)
	return s, nil
}

func (hv *HyperV) UpdateSwitch(ctx context.Context, nameOrID string, p protocol.SwitchUpdateReq) (*network.Switch, error) {
	defer hv.Cache.Clean(cache.Switches)
	if p.Notes != nil {
		s, err := network.SetNotes(ctx, hv.Api, nameOrID, *p.Notes)
		if err != nil {
			return nil, err
		}
		nameOrID = s.ID
	}
	if p.Name != nil {
		return network.Rename(ctx, hv.Api, nameOrID, *p.Name)
	}
	return network.Get(ctx, hv.Api, nameOrID)
}

func (hv *HyperV) DeleteSwitch(ctx context.Context, nameOrID string) error {
	if err := network.Delete(ctx, hv.Api, nameOrID); err != nil {
		return err
	}
	hv.Cache.Clean(cache.Switches)
	return nil
}
