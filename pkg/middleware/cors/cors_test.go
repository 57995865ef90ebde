package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequest(t *testing.T, mw gin.HandlerFunc, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, "/search", nil)
	require.NoError(t, err)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	c.Request = req
	mw(c)
	return w
}

func TestCORSListedOriginReflectedWithCredentials(t *testing.T) {
	mw := New([]string{"https://ayudapp.cl"})
	w := runRequest(t, mw, http.MethodGet, "https://ayudapp.cl")

	assert.Equal(t, "https://ayudapp.cl", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSUnlistedOriginGetsNoHeader(t *testing.T) {
	mw := New([]string{"https://ayudapp.cl"})
	w := runRequest(t, mw, http.MethodGet, "https://evil.example")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	mw := New([]string{"*"})
	w := runRequest(t, mw, http.MethodGet, "https://anything.example")

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	mw := New([]string{"https://ayudapp.cl"})
	w := runRequest(t, mw, http.MethodOptions, "https://ayudapp.cl")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestCORSTrailingSlashNormalised(t *testing.T) {
	mw := New([]string{"https://ayudapp.cl/"})
	w := runRequest(t, mw, http.MethodGet, "https://ayudapp.cl")

	assert.Equal(t, "https://ayudapp.cl", w.Header().Get("Access-Control-Allow-Origin"))
}
