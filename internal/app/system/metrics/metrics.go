// Package metrics holds the Prometheus collectors for access decisions and
// HTTP traffic.
//
// Metrics:
//   - projecthub_access_decisions_total{action,outcome} - policy outcomes; outcome is "allowed" or an accesserr kind
//   - projecthub_listing_projects_total - projects classified by the visibility listing
//   - projecthub_http_requests_total{method,route,code}
//   - projecthub_http_request_duration_seconds{method,route}
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	AccessDecisions *prometheus.CounterVec
	ListedProjects  prometheus.Counter
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccessDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_access_decisions_total",
				Help: "Project access decisions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		ListedProjects: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_listing_projects_total",
			Help: "Projects classified by the visibility listing",
		}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_http_requests_total",
				Help: "HTTP requests by method, route pattern and status",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projecthub_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}
}

// Decision records the outcome of a policy check. A nil receiver is a no-op.
func (m *Metrics) Decision(action string, err error) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if err != nil {
		outcome = accesserr.Kind(err)
	}
	m.AccessDecisions.WithLabelValues(action, outcome).Inc()
}

// Listed adds n classified projects. A nil receiver is a no-op.
func (m *Metrics) Listed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ListedProjects.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts and times requests by chi route pattern, so
// /api/projects/{id} is one series regardless of id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
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
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
