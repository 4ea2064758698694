package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reservation outcome labels
const (
	ReservationCreated  = "created"
	ReservationConflict = "conflict"
	ReservationInvalid  = "invalid"
	ReservationError    = "error"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// method, path, status_code
	HTTPRequestsTotal *prometheus.CounterVec

	// method, path
	HTTPRequestDuration *prometheus.HistogramVec

	// status: created, conflict, invalid, error
	ReservationsTotal *prometheus.CounterVec

	TicketsBookedTotal prometheus.Counter

	// result: hit, miss, error
	PopularityCacheTotal *prometheus.CounterVec
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts by outcome",
			},
			[]string{"status"},
		),
		TicketsBookedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tickets_booked_total",
				Help: "Total number of committed tickets",
			},
		),
		PopularityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popularity_cache_lookups_total",
				Help: "Week most popular cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.TicketsBookedTotal,
		m.PopularityCacheTotal,
	)

	return m
}

func (m *Metrics) ObserveReservation(status string, tickets int) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
	if status == ReservationCreated {
		m.TicketsBookedTotal.Add(float64(tickets))
	}
}

func (m *Metrics) ObservePopularityCache(result string) {
	if m == nil {
		return
	}
	m.PopularityCacheTotal.WithLabelValues(result).Inc()
}
