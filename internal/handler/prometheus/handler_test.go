package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/patients/:cpf", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", h.Handler())
	return r
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	h := New(prometheus.NewRegistry(), "test")
	r := setupRouter(h)

	for _, cpf := range []string{"111.111.111-11", "222.222.222-22"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients/"+cpf, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(h.requestTotal.WithLabelValues(http.MethodGet, "/patients/:cpf", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(h.requestTotal))
}

func TestMiddleware_CountsErrors(t *testing.T) {
	h := New(prometheus.NewRegistry(), "test")
	r := setupRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.errorTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	h := New(prometheus.NewRegistry(), "test")
	r := setupRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients/1", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_requests_total"))
}
