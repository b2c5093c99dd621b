package callback

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/api/e"
	"hyperv-facade/config"
	"hyperv-facade/helper/errs"
	"hyperv-facade/hyperv/protocol"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
)

func receiver(t *testing.T, got chan<- protocol.CallbackRes) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v1", r.Header.Get("X-Test"))
		b, _ := ioutil.ReadAll(r.Body)
		var res protocol.CallbackRes
		require.NoError(t, json.Unmarshal(b, &res))
		got <- res
	}))
}

func TestCallbackObj(t *testing.T) {
	got := make(chan protocol.CallbackRes, 1)
	srv := receiver(t, got)
	defer srv.Close()

	cb := NewCallbacker(protocol.CallbackReq{HttpPost: &protocol.Http{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "v1"},
	}})
	cb.CallbackObj("operation:1", map[string]string{"id": "vm-1"})

	res := <-got
	assert.Equal(t, "operation:1", res.RequestID)
	assert.Equal(t, e.Success, res.Code)
	assert.Equal(t, map[string]interface{}{"id": "vm-1"}, res.Data)
}

func TestCallbackErr_code(t *testing.T) {
	got := make(chan protocol.CallbackRes, 1)
	srv := receiver(t, got)
	defer srv.Close()

	cb := NewCallbacker(protocol.CallbackReq{HttpPost: &protocol.Http{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "v1"},
	}})
	cb.CallbackErr("operation:2", nil, errs.New(errs.InvalidState, "start vm", "web01"))

	res := <-got
	assert.Equal(t, e.InvalidState, res.Code)
	assert.Contains(t, res.Message, "web01")
}

func TestCallback_defaultTarget(t *testing.T) {
	got := make(chan protocol.CallbackRes, 1)
	srv := receiver(t, got)
	defer srv.Close()

	old := config.G.Hyperv.Default.Callback
	config.G.Hyperv.Default.Callback = &protocol.CallbackReq{HttpPost: &protocol.Http{
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "v1"},
	}}
	defer func() { config.G.Hyperv.Default.Callback = old }()

	NewCallbacker(protocol.CallbackReq{}).CallbackArr("deployment:3", nil)
	res := <-got
	assert.Equal(t, "deployment:3", res.RequestID)
	assert.Equal(t, []interface{}{}, res.Data)
}

func TestCallback_noTarget(t *testing.T) {
	old := config.G.Hyperv.Default.Callback
	config.G.Hyperv.Default.Callback = nil
	defer func() { config.G.Hyperv.Default.Callback = old }()

	cb := NewCallbacker(protocol.CallbackReq{})
	assert.Nil(t, cb.target())
	assert.NotPanics(t, func() {
		cb.CallbackObj("operation:4", nil)
	})
}
