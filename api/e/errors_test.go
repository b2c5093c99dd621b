package e

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"hyperv-facade/helper/errs"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		kind errs.Kind
		http int
		code string
	}{
		{errs.NotFound, 404, "4040"},
		{errs.InvalidState, 409, "4090"},
		{errs.InvalidParameter, 400, "4000"},
		{errs.PermissionDenied, 403, "4030"},
		{errs.CapacityExceeded, 409, "4091"},
		{errs.PoolNotFound, 422, "4220"},
		{errs.CapabilitiesNotFound, 422, "4221"},
		{errs.DefaultTemplateNotFound, 422, "4222"},
		{errs.MmioNotConfigured, 409, "4092"},
		{errs.Timeout, 504, "5040"},
		{errs.ConnectionFailed, 502, "4001"},
		{errs.OperationFailed, 500, "9999"},
	}
	for _, c := range cases {
		h, code := StatusOf(errs.New(c.kind, "op", "target"))
		assert.Equal(t, c.http, h, c.kind.String())
		assert.Equal(t, c.code, code, c.kind.String())
	}

	h, code := StatusOf(errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, h)
	assert.Equal(t, FAILED, code)
	assert.Equal(t, Success, CodeOf(nil))
}

func TestResponseFail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	g := Gin{C: c}
	g.ResponseFail(errs.Newf(errs.NotFound, "get vm", "虚拟机[%s]不存在", "x"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"4040"`)
}
