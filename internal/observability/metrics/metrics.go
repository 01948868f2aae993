package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelRoute      = "route"
	LabelStatus     = "status"
	LabelMethod     = "method"
	LabelOutcome    = "outcome"
	LabelPermission = "permission"
	LabelSuccess    = "success"
	LabelSource     = "source"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coffeeshop_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// AuthenticationTotal counts credential verifications by outcome.
	// The outcome is "success" or the failure kind.
	AuthenticationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_authentication_total",
			Help: "Total number of bearer credential checks",
		},
		[]string{LabelOutcome},
	)

	// AuthorizationTotal counts permission checks by permission and outcome
	AuthorizationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_authorization_total",
			Help: "Total number of permission checks",
		},
		[]string{LabelPermission, LabelSuccess},
	)

	// KeySetFetchTotal counts key set retrievals
	KeySetFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_keyset_fetch_total",
			Help: "Total number of signing key set retrievals",
		},
		[]string{LabelSource, LabelSuccess},
	)

	// KeySetFetchDuration tracks how long key set retrieval takes
	KeySetFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coffeeshop_keyset_fetch_duration_seconds",
			Help:    "Duration of signing key set retrievals in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelSource},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request.
// route is the route template, never the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	RequestsTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthentication records a credential check outcome
func (c *Collector) RecordAuthentication(outcome string) {
	if c == nil {
		return
	}
	AuthenticationTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthorization records a permission check
func (c *Collector) RecordAuthorization(permission string, success bool) {
	if c == nil {
		return
	}
	AuthorizationTotal.WithLabelValues(permission, boolToString(success)).Inc()
}

// RecordKeySetFetch records a key set retrieval
func (c *Collector) RecordKeySetFetch(source string, success bool, duration time.Duration) {
	if c == nil {
		return
	}
	KeySetFetchTotal.WithLabelValues(source, boolToString(success)).Inc()
	KeySetFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
