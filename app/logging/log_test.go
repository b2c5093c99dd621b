package logging

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/config"
	"os"
	"path/filepath"
	"testing"
)

func TestL_beforeSetup(t *testing.T) {
	assert.NotPanics(t, func() {
		L().Debugf("未初始化时写日志 %d", 1)
	})
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	config.G.Server.Log.Path = dir + "/"
	config.G.Server.Log.Level = "debug"
	defer func() {
		config.G.Server.Log.Path = ""
		config.G.Server.Log.Level = ""
	}()

	Setup()
	assert.True(t, IsDebug())
	L().Infof("hello %s", "hyperv")
	Sync()

	_, err := os.Stat(filepath.Join(dir, fileName))
	require.NoError(t, err)
}

func TestSetup_badLevel(t *testing.T) {
	config.G.Server.Log.Path = t.TempDir()
	config.G.Server.Log.Level = "verbose"
	defer func() {
		config.G.Server.Log.Path = ""
		config.G.Server.Log.Level = ""
	}()

	Setup()
	assert.False(t, IsDebug())
}
