package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginDenied             = "denied"
	LoginError              = "error"
	LoginRateLimited        = "rate_limited"
)

// Metrics groups the service's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts     *prometheus.CounterVec
	emailsSent        *prometheus.CounterVec
	emailSendDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_login_attempts_total",
				Help: "Total number of admin login attempts by outcome",
			},
			[]string{"outcome"},
		),
		emailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_emails_sent_total",
				Help: "Total number of templated emails dispatched by status",
			},
			[]string{"template", "status"},
		),
		emailSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_email_send_duration_seconds",
				Help:    "SMTP dispatch duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"template"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.loginAttempts,
		m.emailsSent,
		m.emailSendDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordLogin(outcome string) {
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordEmail(template, status string, d time.Duration) {
	m.emailsSent.WithLabelValues(template, status).Inc()
	m.emailSendDuration.WithLabelValues(template).Observe(d.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, route, status string) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

// LoginAttempts is the login counter for one outcome
func (m *Metrics) LoginAttempts(outcome string) prometheus.Counter {
	return m.loginAttempts.WithLabelValues(outcome)
}

// EmailsSent is the email counter for one template and status
func (m *Metrics) EmailsSent(template, status string) prometheus.Counter {
	return m.emailsSent.WithLabelValues(template, status)
}
