// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipebox_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipebox_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	loginRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipebox_login_rate_limited_total",
			Help: "Login attempts rejected by the per-address limiter",
		},
	)

	labelReconcileRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebox_label_reconcile_retries_total",
			Help: "Label reconciliations that lost a race and retried",
		},
		[]string{"kind"},
	)

	imageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipebox_image_upload_bytes",
			Help:    "Size of accepted recipe images",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 6),
		},
	)
)

// Middleware records request count, latency and in-flight requests.
// Requests are labelled by chi route pattern to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// LoginRateLimited counts one rejected login attempt.
func LoginRateLimited() { loginRateLimited.Inc() }

// LabelReconcileRetry counts a reconcile retry for kind ("tag" or "ingredient").
func LabelReconcileRetry(kind string) { labelReconcileRetries.WithLabelValues(kind).Inc() }

// ImageUploaded records the size of a stored image.
func ImageUploaded(size int64) { imageUploadBytes.Observe(float64(size)) }
