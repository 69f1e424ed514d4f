package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics métricas Prometheus del servicio sobre un registry propio (sin estado global, apto para tests).
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthzDecisions  *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	PrincipalErrors *prometheus.CounterVec
}

// New registra las métricas bajo el namespace dado.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "decisions_total",
			Help:      "Decisiones del guard de autorización por módulo, acción y motivo",
		}, []string{"module", "action", "reason"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Intentos de login por resultado",
		}, []string{"outcome"}),
		PrincipalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "principal_resolution_failures_total",
			Help:      "Fallos al resolver el principal de una petición",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCount,
		m.RequestDuration,
		m.AuthzDecisions,
		m.LoginAttempts,
		m.PrincipalErrors,
	)
	return m
}

// ObserveRequest registra una petición terminada.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.RequestCount.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDecision cuenta una decisión del guard.
func (m *Metrics) ObserveDecision(module, action, reason string) {
	m.AuthzDecisions.WithLabelValues(module, action, reason).Inc()
}

// ObserveLogin cuenta un intento de login (success, invalid_credentials, locked, deactivated, error).
func (m *Metrics) ObserveLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObservePrincipalFailure cuenta un rechazo del resolver.
func (m *Metrics) ObservePrincipalFailure(reason string) {
	m.PrincipalErrors.WithLabelValues(reason).Inc()
}

// Registry expone el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler endpoint /metrics en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
