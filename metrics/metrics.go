package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the API.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec   // requests by method, route and status
	HTTPRequestDuration *prometheus.HistogramVec // latency by method and route

	LoginAttempts *prometheus.CounterVec // success, failure, inactive, rate_limited
	RateLimitHits *prometheus.CounterVec // rejected requests by route

	Derivaciones *prometheus.CounterVec // workflow steps by estado
	CacheLookups *prometheus.CounterVec // catalog cache hit/miss/error
	Uploads      *prometheus.CounterVec // document uploads by status
}

// NewMetrics registers the collectors on reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tramite_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter by route",
			},
			[]string{"route"},
		),
		Derivaciones: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_derivaciones_total",
				Help: "Derivation workflow steps by resulting estado",
			},
			[]string{"estado"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_catalog_cache_lookups_total",
				Help: "Catalog cache lookups by result",
			},
			[]string{"result"},
		),
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tramite_document_uploads_total",
				Help: "Document file uploads by status",
			},
			[]string{"status"},
		),
	}
}
