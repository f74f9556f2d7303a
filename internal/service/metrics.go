package service

import (
	"errors"

	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultCompleted         = "completed"
	resultEmptyCart         = "empty_cart"
	resultInsufficientStock = "insufficient_stock"
	resultConflict          = "conflict"
	resultError             = "error"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	checkouts    *prometheus.CounterVec
	stockSignals *prometheus.CounterVec
	reports      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checkouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
		stockSignals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_stock_signals_total",
				Help: "Stock signals emitted after committed checkouts",
			},
			[]string{"kind"},
		),
		reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_sales_reports_total",
				Help: "Sales report runs by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) checkout(err error) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(checkoutResult(err)).Inc()
}

func (m *Metrics) stockSignal(kind domain.StockSignalKind) {
	if m == nil {
		return
	}
	m.stockSignals.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) report(err error) {
	if m == nil {
		return
	}
	result := resultCompleted
	if err != nil {
		result = resultError
	}
	m.reports.WithLabelValues(result).Inc()
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return resultCompleted
	case errors.Is(err, domain.ErrEmptyCart):
		return resultEmptyCart
	case errors.Is(err, domain.ErrInsufficientStock):
		return resultInsufficientStock
	case errors.Is(err, domain.ErrCheckoutConflict):
		return resultConflict
	default:
		return resultError
	}
}
