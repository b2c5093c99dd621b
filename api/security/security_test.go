package security

import (
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hyperv-facade/api/e"
	"hyperv-facade/api/security/bearer"
	"hyperv-facade/hyperv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/token", GetToken)
	r.GET("/whoami", Verify(), func(c *gin.Context) {
		c.JSON(http.StatusOK, GetCurrentAuth(c))
	})
	return r
}

func TestGetTokenAndVerify(t *testing.T) {
	tokenTool = bearer.Token{}
	r := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{"address":"hv-test-node"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Code string            `json:"code"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, e.Success, res.Code)
	require.NotEmpty(t, res.Data["token"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("token", res.Data["token"])
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var a hyperv.Auth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "hv-test-node", a.Address)
}

func TestGetToken_badRequest(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify_rejects(t *testing.T) {
	tokenTool = bearer.Token{}
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), e.Unauthorized)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("token", "garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), e.TokenInvalid)
}

func TestGetTokenTool(t *testing.T) {
	assert.Equal(t, "jwt", getTokenTool("jwt").Type())
	assert.Equal(t, "bearer", getTokenTool("").Type())
}
