package transport

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts requests and refresh cycles. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	waiters   prometheus.Counter
	replays   prometheus.Counter
	breaker   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquakeys_requests_total",
			Help: "API calls by status class (2xx, 4xx, 5xx, error).",
		}, []string{"class"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquakeys_refresh_total",
			Help: "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		waiters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aquakeys_refresh_waiters_total",
			Help: "Requests that waited on an in-flight refresh instead of starting one.",
		}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aquakeys_replays_total",
			Help: "Requests replayed after a 401.",
		}),
		breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "aquakeys_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.refreshes, m.waiters, m.replays, m.breaker)
	}
	return m
}

func (m *Metrics) observe(status int) {
	if m == nil {
		return
	}
	class := "error"
	if status > 0 {
		class = strconv.Itoa(status/100) + "xx"
	}
	m.requests.WithLabelValues(class).Inc()
}

func (m *Metrics) refreshed(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) waited() {
	if m == nil {
		return
	}
	m.waiters.Inc()
}

func (m *Metrics) replayed() {
	if m == nil {
		return
	}
	m.replays.Inc()
}

func (m *Metrics) breakerState(name string, v float64) {
	if m == nil {
		return
	}
	m.breaker.WithLabelValues(name).Set(v)
}
