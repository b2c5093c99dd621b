package badgerdb

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Open(dir))
	defer Close()

	assert.False(t, Has("operation:1"))
	assert.Equal(t, "", Get("operation:1"))

	Set("operation:1", `{"ids":["web01"]}`)
	Set("deployment:2", `{"name":"vm1"}`)
	assert.True(t, Has("operation:1"))
	assert.Equal(t, `{"ids":["web01"]}`, Get("operation:1"))
	assert.Len(t, GetAll(), 2)

	require.NoError(t, Del("operation:1"))
	assert.False(t, Has("operation:1"))
	assert.Equal(t, map[string]string{"deployment:2": `{"name":"vm1"}`}, GetAll())
}

func TestOpen_locked(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Open(dir))
	defer Close()

	first := db
	err := Open(dir)
	assert.Error(t, err)
	assert.Same(t, first, db)
}

func TestDisabled(t *testing.T) {
	Close()
	Set("k", "v")
	assert.False(t, Has("k"))
	assert.Empty(t, GetAll())
	assert.NoError(t, Del("k"))
}
