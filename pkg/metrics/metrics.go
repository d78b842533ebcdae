package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Calculations    *prometheus.CounterVec
	SplitMismatches prometheus.Counter
	Reminders       *prometheus.CounterVec
	PaymentsTotal   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them with reg.
// A *prometheus.Registry is used as both registerer and gatherer.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitease_settlement_calculations_total",
			Help: "Settlement calculations performed, by view",
		}, []string{"view"}),
		SplitMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitease_split_mismatches_total",
			Help: "Custom splits rejected because they do not add up to the expense amount",
		}),
		Reminders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitease_reminders_total",
			Help: "Payment reminders handled, by outcome",
		}, []string{"status"}),
		PaymentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitease_payments_recorded_total",
			Help: "Payments recorded against expenses",
		}),
		gatherer: reg,
	}
}

// ObserveCalculation counts one settlement calculation for view.
func (m *Metrics) ObserveCalculation(view string) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(view).Inc()
}

// IncrementSplitMismatch counts one rejected custom split.
func (m *Metrics) IncrementSplitMismatch() {
	if m == nil {
		return
	}
	m.SplitMismatches.Inc()
}

// ObserveReminder counts one reminder with the given outcome.
func (m *Metrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.Reminders.WithLabelValues(status).Inc()
}

// IncrementPayments counts one recorded payment.
func (m *Metrics) IncrementPayments() {
	if m == nil {
		return
	}
	m.PaymentsTotal.Inc()
}

// Handler exposes the registered metrics for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
