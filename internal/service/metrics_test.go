package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCheckoutResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: resultCompleted},
		{err: fmt.Errorf("placeOrder: %w", domain.ErrEmptyCart), want: resultEmptyCart},
		{err: &domain.InsufficientStockError{Available: 1}, want: resultInsufficientStock},
		{err: fmt.Errorf("%w: deadlock", domain.ErrCheckoutConflict), want: resultConflict},
		{err: errors.New("connection refused"), want: resultError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, checkoutResult(tt.err))
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.checkout(nil)
	m.checkout(nil)
	m.checkout(domain.ErrEmptyCart)
	m.stockSignal(domain.SignalLowStock)
	m.report(errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.checkouts.WithLabelValues(resultCompleted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkouts.WithLabelValues(resultEmptyCart)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.stockSignals.WithLabelValues("low_stock")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reports.WithLabelValues(resultError)))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.checkout(nil)
		nilMetrics.stockSignal(domain.SignalSoldOut)
		nilMetrics.report(nil)
	})
}
