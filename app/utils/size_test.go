package utils

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseSize(t *testing.T) {
	n, err := ParseSize("40GB")
	require.NoError(t, err)
	assert.Equal(t, uint64(40*1024*MB), n)

	n, err = ParseSize("1048576")
	require.NoError(t, err)
	assert.Equal(t, uint64(MB), n)

	_, err = ParseSize("lots")
	assert.Error(t, err)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "2GiB", HumanSize(2*1024*MB))
}
