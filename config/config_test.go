package config

import (
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	Defaults()
	assert.Equal(t, DriverSim, G.Hyperv.Host.Driver)
	assert.Equal(t, int32(300), G.Hyperv.Timeout.Job)
	assert.Equal(t, 10, G.Hyperv.RoutineCount.Operation)
	assert.Equal(t, 5, G.Hyperv.RoutineCount.Deployment)
}

func TestReload_configFile(t *testing.T) {
	viper.Reset()
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath("..")
	Defaults()
	Reload()

	assert.Equal(t, "jwt", G.App.Token.Type)
	assert.True(t, G.Hyperv.Default.Operation.ShutdownFirst)
	require.NotNil(t, G.Hyperv.Default.Callback)
	require.NotNil(t, G.Hyperv.Default.Callback.HttpPost)
	assert.Contains(t, G.Hyperv.Default.Callback.HttpPost.URL, "/api/v1/test_call_back")
	require.NotNil(t, G.Hyperv.Default.Notify.Redis)
	assert.Equal(t, "hyperv-facade:jobs", G.Hyperv.Default.Notify.Redis.Channel)
	require.NotNil(t, G.Server.Db.Badger)
	assert.Equal(t, "./data", G.Server.Db.Badger.Path)
}
