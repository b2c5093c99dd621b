package cache

import (
	"hyperv-facade/helper/gpu"
	"hyperv-facade/helper/network"
	"hyperv-facade/hyperv/protocol"
)

// 缓存的数据项
const (
	VirtualMachines = "Msvm_ComputerSystem"
	Switches        = network.Type
	Gpus            = "Msvm_PartitionableGpu"
	Devices         = "Msvm_AssignableDevice"
	Nodes           = "ClusterNode"
	Groups          = "ClusterGroup"
)

var Items = []string{VirtualMachines, Switches, Gpus, Devices, Nodes, Groups}

func (c HostCache) CacheVirtualMachines(v []protocol.VirtualMachineBrief) {
	c.Set(VirtualMachines, v)
}

func (c HostCache) GetVirtualMachines() []protocol.VirtualMachineBrief {
	v, b := c.Get(VirtualMachines)
	if !b {
		return nil
	}
	return v.([]protocol.VirtualMachineBrief)
}

func (c HostCache) CacheSwitches(v []*network.Switch) {
	c.Set(Switches, v)
}

func (c HostCache) GetSwitches() []*network.Switch {
	v, b := c.Get(Switches)
	if !b {
		return nil
	}
	return v.([]*network.Switch)
}

func (c HostCache) CacheGpus(v []gpu.GPU) {
	c.Set(Gpus, v)
}

func (c HostCache) GetGpus() []gpu.GPU {
	v, b := c.Get(Gpus)
	if !b {
		return nil
	}
	return v.([]gpu.GPU)
}

func (c HostCache) CacheDevices(v []gpu.Device) {
	c.Set(Devices, v)
}

func (c HostCache) GetDevices() []gpu.Device {
	v, b := c.Get(Devices)
	if !b {
		return nil
	}
	return v.([]gpu.Device)
}

func (c HostCache) CacheNodes(v []protocol.NodeInfo) {
	c.Set(Nodes, v)
}

func (c HostCache) GetNodes() []protocol.NodeInfo {
	v, b := c.Get(Nodes)
	if !b {
		return nil
	}
	return v.([]protocol.NodeInfo)
}

func (c HostCache) CacheGroups(v []protocol.GroupInfo) {
	c.Set(Groups, v)
}

func (c HostCache) GetGroups() []protocol.GroupInfo {
	v, b := c.Get(Groups)
	if !b {
		return nil
	}
	return v.([]protocol.GroupInfo)
}
