// Package metrics provides Prometheus metrics for the loadouts API.
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
	// RequestsTotal counts served requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loadouts",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration measures request handling time.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loadouts",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// PageSize observes the number of items returned per keyset page.
	PageSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loadouts",
			Name:      "page_items",
			Help:      "Distribution of items returned per page",
			Buckets:   []float64{0, 1, 5, 10, 24, 50, 100},
		},
		[]string{"list"},
	)

	// PagesTotal counts served pages by whether more data remained.
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loadouts",
			Name:      "pages_total",
			Help:      "Total number of keyset pages served",
		},
		[]string{"list", "has_more"},
	)

	// SideEffectFailuresTotal counts notification and analytics writes that
	// failed without failing the request.
	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loadouts",
			Name:      "side_effect_failures_total",
			Help:      "Total number of failed non-blocking writes",
		},
		[]string{"kind"},
	)
)

// RecordPage records a served keyset page.
func RecordPage(list string, items int, hasMore bool) {
	PageSize.WithLabelValues(list).Observe(float64(items))
	PagesTotal.WithLabelValues(list, strconv.FormatBool(hasMore)).Inc()
}

// RecordSideEffectFailure records a failed notification or analytics write.
func RecordSideEffectFailure(kind string) {
	SideEffectFailuresTotal.WithLabelValues(kind).Inc()
}

// Middleware records request counts and durations labelled by the matched
// route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
