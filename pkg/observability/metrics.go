// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the secretkey server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LatencyBuckets covers in-process authentication and small handlers,
// from 100µs to 1s.
var LatencyBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretkey_http_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "secretkey_http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LatencyBuckets,
		},
		[]string{"method"},
	)

	// AuthDecisionsTotal counts auth chain votes seen by the HTTP middleware.
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretkey_auth_decisions_total",
			Help: "Authentication chain decisions",
		},
		[]string{"decision"},
	)

	// AuthOutcomesTotal counts secret-key evaluations by outcome.
	AuthOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretkey_auth_outcomes_total",
			Help: "Secret key authentication outcomes",
		},
		[]string{"scheme", "outcome"},
	)

	// CredentialStoreEntries reports the size of the published credential store.
	CredentialStoreEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "secretkey_credential_store_entries",
			Help: "Secrets in the active credential store",
		},
		[]string{"scheme"},
	)

	// CredentialStoreReloadsTotal counts store rebuilds by result (ok, error).
	CredentialStoreReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretkey_credential_store_reloads_total",
			Help: "Credential store reloads",
		},
		[]string{"result"},
	)

	// JWKSRefreshesTotal counts JWKS fetches by result (ok, error).
	JWKSRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secretkey_jwks_refreshes_total",
			Help: "JWKS key set refreshes",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthDecisionsTotal,
		AuthOutcomesTotal,
		CredentialStoreEntries,
		CredentialStoreReloadsTotal,
		JWKSRefreshesTotal,
	)
}
