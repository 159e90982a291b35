package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blog_backend/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware_CountsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(PrometheusMiddleware(metrics))
	router.GET("/blog/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"blog": nil})
	})

	for _, path := range []string{"/blog/a", "/blog/b", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/blog/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}
