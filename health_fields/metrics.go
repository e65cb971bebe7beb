package health_fields

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var upstreamMetricsOnce sync.Once

var (
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
)

func registerHistogramVec(c *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		log.Printf("prometheus histogram register failed: %v", err)
	}
	return c
}

func registerCountVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		log.Printf("prometheus counter register failed: %v", err)
	}
	return c
}

func initUpstreamMetrics() {
	upstreamMetricsOnce.Do(func() {
		upstreamRequestsTotal = registerCountVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hridamrit",
			Subsystem: "upstream_client",
			Name:      "requests_total",
			Help:      "Total number of upstream HTTP requests.",
		}, []string{"provider", "endpoint", "method", "status", "result"}))

		upstreamRequestDuration = registerHistogramVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hridamrit",
			Subsystem: "upstream_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "endpoint", "method", "result"}))
	})
}

// RecordUpstream tracks a single call to a third-party API. provider is the
// upstream system (google_fit, model_server, twilio); endpoint is the logical
// operation, not the raw URL.
func RecordUpstream(provider, endpoint, method string, statusCode int, err error, duration time.Duration) {
	initUpstreamMetrics()
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	// non-2xx replies are failures even when the transport succeeded
	result := "success"
	if err != nil || statusCode/100 != 2 {
		result = "error"
	}

	upstreamRequestsTotal.WithLabelValues(provider, endpoint, method, status, result).Inc()
	upstreamRequestDuration.WithLabelValues(provider, endpoint, method, result).Observe(duration.Seconds())
}
