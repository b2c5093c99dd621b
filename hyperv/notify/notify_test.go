package notify

import (
	"context"
	"github.com/stretchr/testify/assert"
	"hyperv-facade/config"
	"testing"
)

func TestSetup_disabled(t *testing.T) {
	config.G.Hyperv.Default.Notify.Redis = nil
	Setup()
	assert.False(t, Enabled())
	assert.NoError(t, Publish(context.Background(), Event{RequestID: "operation:1"}))
}

func TestSetup_badURL(t *testing.T) {
	config.G.Hyperv.Default.Notify.Redis = &struct {
		URL     string `mapstructure:"url"`
		Channel string `mapstructure:"channel"`
	}{URL: "not-a-url"}
	defer func() { config.G.Hyperv.Default.Notify.Redis = nil }()
	Setup()
	assert.False(t, Enabled())
}

func TestSetup_configured(t *testing.T) {
	config.G.Hyperv.Default.Notify.Redis = &struct {
		URL     string `mapstructure:"url"`
		Channel string `mapstructure:"channel"`
	}{URL: "redis://127.0.0.1:6379/0", Channel: "jobs"}
	defer func() {
		config.G.Hyperv.Default.Notify.Redis = nil
		Close()
		channel = defaultChannel
	}()
	Setup()
	assert.True(t, Enabled())
	assert.Equal(t, "jobs", channel)
}
