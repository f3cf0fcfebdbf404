package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route template",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	// лента из кеша отвечает за миллисекунды, пересчет - за сотни миллисекунд
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.002, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "endpoint", "service"},
	)

	httpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
		[]string{"service"},
	)
)

// PrometheusMiddleware считает запросы по шаблону маршрута, а не по фактическому пути
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		inFlight.Inc()
		start := time.Now()
		defer func() {
			inFlight.Dec()
			code := strconv.Itoa(c.Writer.Status())
			httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, code, serviceName).Inc()
			httpRequestDuration.WithLabelValues(c.Request.Method, endpoint, serviceName).Observe(time.Since(start).Seconds())
		}()

		c.Next()
	}
}
