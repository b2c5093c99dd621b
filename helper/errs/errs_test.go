package errs

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"hyperv-facade/hostctl"
	"testing"
)

func TestFromCode(t *testing.T) {
	cases := map[uint32]Kind{
		hostctl.ReturnAccessDenied:     PermissionDenied,
		hostctl.ReturnInvalidParameter: InvalidParameter,
		hostctl.ReturnInvalidState:     InvalidState,
		hostctl.ReturnOutOfMemory:      CapacityExceeded,
		hostctl.ReturnFileNotFound:     NotFound,
		hostctl.ReturnFailed:           OperationFailed,
		12345:                          OperationFailed,
	}
	for code, kind := range cases {
		err := FromCode("AddResourceSettings", "vm1", code, "desc")
		assert.Equal(t, kind, err.Kind, "code %d", code)
		assert.Equal(t, code, CodeOf(err))
		assert.Contains(t, err.Error(), "desc")
	}
}

func TestFromHost(t *testing.T) {
	assert.Nil(t, FromHost("op", "x", nil))
	assert.True(t, IsKind(FromHost("open", "n1", hostctl.ErrNotFound), NotFound))
	assert.True(t, IsKind(FromHost("open", "n1", hostctl.ErrInvalidHandle), InvalidState))
	assert.True(t, IsKind(FromHost("ping", "", fmt.Errorf("dial: %w", hostctl.ErrUnreachable)), ConnectionFailed))
	assert.True(t, IsKind(FromHost("op", "", errors.New("boom")), OperationFailed))

	typed := New(CapacityExceeded, "add", "gpu")
	assert.Same(t, typed, FromHost("other", "", typed))
}

func TestKindOf_wrapped(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(PoolNotFound, "pipeline", "Microsoft:Hyper-V:Gpu Partition"))
	assert.Equal(t, PoolNotFound, KindOf(err))
	assert.Equal(t, OperationFailed, KindOf(errors.New("plain")))
	assert.True(t, errors.Is(err, &Error{Kind: PoolNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: NotFound}))
	assert.Equal(t, "PoolNotFound", PoolNotFound.String())
}
