package intutils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestZeroThen(t *testing.T) {
	assert.Equal(t, 7, ZeroThen(0, 7))
	assert.Equal(t, 3, ZeroThen(3, 7))
}
