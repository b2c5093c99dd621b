package startup

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/db/badgerdb"
	"hyperv-facade/hyperv/protocol"
	"hyperv-facade/hyperv/workerpool"
	"hyperv-facade/hyperv/workerpool/taskreceiver"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestInterruptTaskCallback(t *testing.T) {
	var (
		mu       sync.Mutex
		received []protocol.CallbackRes
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var res protocol.CallbackRes
		_ = json.NewDecoder(r.Body).Decode(&res)
		mu.Lock()
		received = append(received, res)
		mu.Unlock()
	}))
	defer srv.Close()

	require.NoError(t, badgerdb.Open(t.TempDir()))
	defer badgerdb.Close()

	id := taskreceiver.Receive(workerpool.WorkerTypeOperation, map[string]interface{}{
		"ids":      []string{"web01"},
		"callback": protocol.CallbackReq{HttpPost: &protocol.Http{URL: srv.URL}},
	})
	badgerdb.Set("operation:broken", "{")

	Run()

	assert.Empty(t, taskreceiver.GetReceivedReq())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, id, received[0].RequestID)
	assert.Equal(t, "9999", received[0].Code)
	assert.Contains(t, received[0].Message, interruptReason)
}
