package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the terminal service. Each
// instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	TerminalsAdded   prometheus.Counter
	AddFailures      *prometheus.CounterVec
	TerminalsStored  prometheus.Gauge
	DispatchRequests *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TerminalsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_service_terminals_added_total",
			Help: "Total number of terminals added to the registry",
		}),
		AddFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_service_add_failures_total",
			Help: "Terminals rejected by the registry or the decoder, by reason",
		}, []string{"reason"}),
		TerminalsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "terminal_service_terminals_stored",
			Help: "Number of terminals currently held in the registry",
		}),
		DispatchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_service_dispatch_requests_total",
			Help: "Requests seen by the dispatcher, by method and status code",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(m.TerminalsAdded, m.AddFailures, m.TerminalsStored, m.DispatchRequests)
	return m
}

func (m *Metrics) IncrementTerminalsAdded(stored int) {
	m.TerminalsAdded.Inc()
	m.TerminalsStored.Set(float64(stored))
}

func (m *Metrics) IncrementAddFailures(reason string) {
	m.AddFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveDispatch(method, code string) {
	m.DispatchRequests.WithLabelValues(method, code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
