package hostctl

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestObject_Clone(t *testing.T) {
	o := NewObject("Msvm_GpuPartitionSettingData").
		Set("HostResource", []string{"gpu0"}).
		Set("MinimumVideoMemory", uint64(1024))
	c := o.Clone()
	c.Props["HostResource"].([]string)[0] = "gpu1"
	c.Set("MinimumVideoMemory", uint64(2048))

	assert.Equal(t, "gpu0", o.String("HostResource"))
	assert.Equal(t, uint64(1024), o.Uint64("MinimumVideoMemory"))
	assert.Equal(t, uint64(2048), c.Uint64("MinimumVideoMemory"))
}

func TestParams_jsonNumbers(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"ReturnValue":4096,"Job":"job-1","Ok":true,"Names":["a","b"]}`), &p))
	assert.Equal(t, ReturnJobStarted, p.Uint32("ReturnValue"))
	assert.Equal(t, "job-1", p.String("Job"))
	assert.True(t, p.Bool("Ok"))
	assert.Equal(t, []string{"a", "b"}, p.Strings("Names"))
	assert.False(t, p.Has("Missing"))
}

func TestParams_embeddedObject(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"Settings":[{"path":"p1","class":"C","props":{"ElementName":"x"}}]}`), &p))
	objs := p.Objects("Settings")
	require.Len(t, objs, 1)
	assert.Equal(t, "p1", objs[0].Path)
	assert.Equal(t, "x", objs[0].String("ElementName"))
}
