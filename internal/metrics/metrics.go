// Package metrics holds the prometheus collectors of the site.
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
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// StoreWrites counts content store writes by operation, path and outcome.
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_store_writes_total",
			Help: "Total number of content store writes",
		},
		[]string{"op", "path", "status"},
	)
	// LiveSubscriptions is the number of active live collection subscriptions.
	LiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "site_live_subscriptions",
			Help: "Active live collection subscriptions",
		},
	)
	// IntakeSubmissions counts public form submissions by kind and outcome.
	IntakeSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_intake_submissions_total",
			Help: "Public intake form submissions",
		},
		[]string{"kind", "status"},
	)
)

// Outcome maps an error to a status label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware records request count and latency keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
