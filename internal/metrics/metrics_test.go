package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh-scan-api-server/internal/lifecycle"
)

func TestObserveTransition(t *testing.T) {
	m := New()
	m.ObserveTransition(lifecycle.EventResolved)
	m.ObserveTransition(lifecycle.EventResolved)
	m.ObserveTransition(lifecycle.EventAssigned)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues(string(lifecycle.EventResolved))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues(string(lifecycle.EventAssigned))))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/feedback/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feedback/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/feedback/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "swachh_http_requests_total"))
}
