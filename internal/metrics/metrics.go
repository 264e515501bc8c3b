// Package metrics owns the service's prometheus collectors.
//
// All recording methods are safe to call on a nil *Registry, which lets
// tests and tools build components without wiring metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uploadauth"

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginInactive           = "inactive"
	LoginThrottled          = "throttled"
)

// Token rejection reasons.
const (
	RejectMissing          = "missing"
	RejectMalformed        = "malformed"
	RejectInvalidSignature = "invalid_signature"
	RejectExpired          = "expired"
	RejectUnknownAccount   = "unknown_account"
	RejectInactive         = "inactive"
)

// Upload token outcomes.
const (
	UploadIssued        = "issued"
	UploadMisconfigured = "misconfigured"
	UploadFailed        = "failed"
)

type Registry struct {
	reg *prometheus.Registry

	logins                  *prometheus.CounterVec
	loginEventWriteFailures prometheus.Counter
	tokenRejections         *prometheus.CounterVec
	uploadTokens            *prometheus.CounterVec
	httpRequests            *prometheus.CounterVec
	loginEventsCleanedUp    prometheus.Counter
}

// NewRegistry creates a private registry with the Go runtime and process
// collectors plus the service counters.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		loginEventWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_event_write_failures_total",
			Help:      "Login history writes that failed and were dropped.",
		}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rejections_total",
			Help:      "Requests whose credentials could not be resolved to an active account.",
		}, []string{"reason"}),
		uploadTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_tokens_total",
			Help:      "Upload token requests by outcome.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		loginEventsCleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_events_cleaned_up_total",
			Help:      "Login history rows removed by retention cleanup.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.logins,
		r.loginEventWriteFailures,
		r.tokenRejections,
		r.uploadTokens,
		r.httpRequests,
		r.loginEventsCleanedUp,
	)
	return r
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) Login(result string) {
	if r == nil {
		return
	}
	r.logins.WithLabelValues(result).Inc()
}

func (r *Registry) LoginEventWriteFailed() {
	if r == nil {
		return
	}
	r.loginEventWriteFailures.Inc()
}

func (r *Registry) TokenRejected(reason string) {
	if r == nil {
		return
	}
	r.tokenRejections.WithLabelValues(reason).Inc()
}

func (r *Registry) UploadToken(result string) {
	if r == nil {
		return
	}
	r.uploadTokens.WithLabelValues(result).Inc()
}

func (r *Registry) LoginEventsCleanedUp(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.loginEventsCleanedUp.Add(float64(n))
}

func (r *Registry) HTTPRequest(method, route string, status int) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
