// Package metrics provides Prometheus metrics for the CardSense API client.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cardsense_client"

// Token fetch outcomes, one per extraction source plus the two failure modes.
const (
	TokenFromHeader    = "header"
	TokenFromBody      = "body"
	TokenFromCookieJar = "cookie_jar"
	TokenFromSetCookie = "set_cookie"
	TokenMissing       = "missing"
	TokenFetchFailed   = "failed"
)

// ClientMetrics holds the collectors updated by the request wrapper.
// A nil *ClientMetrics is valid and records nothing.
type ClientMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokenFetches    *prometheus.CounterVec
	CSRFRetries     prometheus.Counter
}

// NewClientMetrics creates the client collectors and registers them with reg.
func NewClientMetrics(reg prometheus.Registerer) (*ClientMetrics, error) {
	m := &ClientMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests sent to the backend by method and status code (0 = no response).",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from sending a request to reading the full response body.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"method"}),
		TokenFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_token_fetches_total",
			Help:      "CSRF token fetches by the source the token was found in.",
		}, []string{"outcome"}),
		CSRFRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csrf_retries_total",
			Help:      "Unsafe requests resent after a 403 with a refreshed CSRF token.",
		}),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.RequestDuration, m.TokenFetches, m.CSRFRetries} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register client metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveRequest records one HTTP attempt. status is 0 when no response was received.
func (m *ClientMetrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordTokenFetch records the outcome of a call to the CSRF endpoint.
func (m *ClientMetrics) RecordTokenFetch(outcome string) {
	if m == nil {
		return
	}
	m.TokenFetches.WithLabelValues(outcome).Inc()
}

// RecordRetry records a resend after a 403.
func (m *ClientMetrics) RecordRetry() {
	if m == nil {
		return
	}
	m.CSRFRetries.Inc()
}
