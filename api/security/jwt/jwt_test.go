package jwt

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/api/e"
	"hyperv-facade/hyperv"
	"strings"
	"testing"
	"time"
)

func TestToken(t *testing.T) {
	jwtSecret = []byte("secret")
	a := hyperv.Auth{Address: "https://hv-node1:5986", Token: "agent-token", Cluster: "hv-cluster"}

	token, err := Token{}.Generate(a)
	require.NoError(t, err)
	assert.False(t, strings.Contains(token, "agent-token"))

	got, err := Token{}.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, a, *got)
}

func TestToken_expired(t *testing.T) {
	jwtSecret = []byte("secret")
	old := expiresIn
	expiresIn = -time.Minute
	defer func() { expiresIn = old }()

	token, err := Token{}.Generate(hyperv.Auth{Address: "sim"})
	require.NoError(t, err)
	_, err = Token{}.Parse(token)
	require.Error(t, err)
	assert.Equal(t, e.TokenExpired, err.Error())
}

func TestToken_invalid(t *testing.T) {
	jwtSecret = []byte("secret")
	token, err := Token{}.Generate(hyperv.Auth{Address: "sim"})
	require.NoError(t, err)

	jwtSecret = []byte("other")
	_, err = Token{}.Parse(token)
	require.Error(t, err)
	assert.Equal(t, e.TokenInvalid, err.Error())
}
