package service

import (
	"signal_bot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — счётчики циклов и заявок в Prometheus.
type Metrics struct {
	cycles    *prometheus.CounterVec
	orders    *prometheus.CounterVec
	failures  *prometheus.GaugeVec
	lastPrice *prometheus.GaugeVec
	lastCycle *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signal_bot",
			Name:      "cycles_total",
			Help:      "Loop cycles by outcome and decision.",
		}, []string{"symbol", "outcome", "decision"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signal_bot",
			Name:      "orders_total",
			Help:      "Order attempts by side and status.",
		}, []string{"symbol", "side", "status"}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signal_bot",
			Name:      "consecutive_fetch_failures",
			Help:      "Consecutive failed market data fetches.",
		}, []string{"symbol"}),
		lastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signal_bot",
			Name:      "last_close",
			Help:      "Close of the latest complete candle.",
		}, []string{"symbol"}),
		lastCycle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signal_bot",
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time of the latest cycle.",
		}, []string{"symbol"}),
	}

	for _, c := range []prometheus.Collector{m.cycles, m.orders, m.failures, m.lastPrice, m.lastCycle} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Observe(rep models.CycleReport) {
	m.cycles.WithLabelValues(rep.Symbol, string(rep.Outcome), string(rep.Decision)).Inc()
	m.failures.WithLabelValues(rep.Symbol).Set(float64(rep.ConsecutiveFailures))
	if !rep.At.IsZero() {
		m.lastCycle.WithLabelValues(rep.Symbol).Set(float64(rep.At.Unix()))
	}
	if rep.Price > 0 {
		m.lastPrice.WithLabelValues(rep.Symbol).Set(rep.Price)
	}
	if o := rep.Order; o != nil && o.Attempted() {
		m.orders.WithLabelValues(rep.Symbol, string(o.Side), string(o.Status)).Inc()
	}
}
