package hostsystem

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/helper"
	"hyperv-facade/hostctl/simhost"
	"testing"
)

func TestGet(t *testing.T) {
	api := helper.NewAPI("test", simhost.NewDemo("hv-node1"))
	info, err := Get(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "hv-node1", info.Name)
	assert.Equal(t, uint32(16), info.LogicalProcessors)
	assert.Equal(t, 2, info.VmCount)
	assert.Equal(t, map[string]int{"Running": 1, "Off": 1}, info.VmStates)
	assert.NotEmpty(t, info.DefaultVirtualHardDiskPath)
	assert.Equal(t, "sim", info.Driver)
}
