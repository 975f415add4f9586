package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		*capture = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestEchoesSuppliedRequestID(t *testing.T) {
	var got string
	r := newRouter(&got)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", got)
	assert.Equal(t, "upstream-42", w.Header().Get("X-Request-ID"))
}

func TestMintsIDWhenAbsentOrOversized(t *testing.T) {
	var got string
	r := newRouter(&got)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, got)
	assert.Equal(t, got, w.Header().Get("X-Request-ID"))

	oversized := strings.Repeat("x", 200)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", oversized)
	r.ServeHTTP(w, req)
	assert.NotEqual(t, oversized, got)
	assert.NotEmpty(t, got)
}
