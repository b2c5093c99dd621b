package stringutils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestEPTThen(t *testing.T) {
	assert.Equal(t, ".", EPTThen("  ", "."))
	assert.Equal(t, "/var/log", EPTThen("/var/log", "."))
	assert.True(t, EqualFoldAny("Dynamic", "fixed", "dynamic"))
	assert.False(t, EqualFoldAny("vhd"))
}
