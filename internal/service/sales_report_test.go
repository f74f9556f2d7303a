package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/nikolayk812/storefront-core/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

func usd(amount string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(amount), Currency: currency.USD}
}

func completedOrder(items ...domain.OrderItem) domain.Order {
	total := domain.ZeroMoney(currency.USD)
	for _, item := range items {
		total, _ = total.Add(item.Subtotal())
	}

	return domain.Order{
		ID:     uuid.New(),
		Total:  total,
		Status: domain.OrderStatusCompleted,
		Items:  items,
	}
}

func TestSummarizeSales_Empty(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, orders := range [][]domain.Order{nil, {}} {
		report := service.SummarizeSales(orders, date)

		assert.True(t, report.TotalRevenue.IsZero())
		assert.Zero(t, report.TotalOrders)
		assert.Zero(t, report.TotalItemsSold)
		assert.NotNil(t, report.ProductsSold)
		assert.Empty(t, report.ProductsSold)
		assert.Equal(t, date, report.Date)
	}
}

func TestSummarizeSales(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	orders := []domain.Order{
		completedOrder(
			domain.OrderItem{ProductID: a, ProductName: "A", Quantity: 2, Price: usd("25.00")},
			domain.OrderItem{ProductID: b, ProductName: "B", Quantity: 1, Price: usd("45.00")},
		),
		// A sold again at a later price
		completedOrder(
			domain.OrderItem{ProductID: a, ProductName: "A", Quantity: 1, Price: usd("30.00")},
			domain.OrderItem{ProductID: c, ProductName: "C", Quantity: 1, Price: usd("5.00")},
		),
	}

	report := service.SummarizeSales(orders, time.Time{})

	assert.Equal(t, "130.00", report.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 5, report.TotalItemsSold)

	require.Len(t, report.ProductsSold, 3)

	assert.Equal(t, a, report.ProductsSold[0].ProductID)
	assert.Equal(t, 3, report.ProductsSold[0].Quantity)
	assert.Equal(t, "80.00", report.ProductsSold[0].Revenue.StringFixed(2))

	// B and C tie on quantity and keep first-seen order
	assert.Equal(t, b, report.ProductsSold[1].ProductID)
	assert.Equal(t, "45.00", report.ProductsSold[1].Revenue.StringFixed(2))
	assert.Equal(t, c, report.ProductsSold[2].ProductID)
	assert.Equal(t, "5.00", report.ProductsSold[2].Revenue.StringFixed(2))

	revenue := decimal.Zero
	for _, sold := range report.ProductsSold {
		revenue = revenue.Add(sold.Revenue)
	}
	assert.True(t, report.TotalRevenue.Equal(revenue))
}

type stubOrders struct {
	port.OrderRepository

	orders   []domain.Order
	err      error
	from, to time.Time
}

func (s *stubOrders) ListCompletedBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	s.from, s.to = from, to
	return s.orders, s.err
}

type stubPublisher struct {
	err       error
	published []domain.SalesReport
}

func (p *stubPublisher) PublishReport(_ context.Context, report domain.SalesReport) error {
	p.published = append(p.published, report)
	return p.err
}

func TestSalesReportJob_Run(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	orders := &stubOrders{orders: []domain.Order{
		completedOrder(domain.OrderItem{ProductID: uuid.New(), ProductName: "A", Quantity: 2, Price: usd("25.00")}),
	}}
	first, second := &stubPublisher{}, &stubPublisher{}

	job := service.NewSalesReportJob(orders, []port.ReportPublisher{first, second}, true, berlin, zap.NewNop(), nil)

	// 23:30 UTC on the 9th is already the 10th in Berlin
	report, err := job.Run(t.Context(), time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	wantFrom := time.Date(2025, 3, 10, 0, 0, 0, 0, berlin)
	assert.True(t, wantFrom.Equal(orders.from))
	assert.True(t, wantFrom.AddDate(0, 0, 1).Equal(orders.to))
	assert.True(t, wantFrom.Equal(report.Date))

	assert.Equal(t, "50.00", report.TotalRevenue.StringFixed(2))
	assert.Len(t, first.published, 1)
	assert.Len(t, second.published, 1)
}

func TestSalesReportJob_Disabled(t *testing.T) {
	orders := &stubOrders{err: errors.New("must not be called")}
	publisher := &stubPublisher{}

	job := service.NewSalesReportJob(orders, []port.ReportPublisher{publisher}, false, nil, zap.NewNop(), nil)

	report, err := job.Run(t.Context(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.TotalOrders)
	assert.Empty(t, publisher.published)
}

func TestSalesReportJob_Errors(t *testing.T) {
	t.Run("load fails", func(t *testing.T) {
		loadErr := errors.New("connection reset")
		publisher := &stubPublisher{}

		job := service.NewSalesReportJob(&stubOrders{err: loadErr}, []port.ReportPublisher{publisher}, true, time.UTC, zap.NewNop(), nil)

		_, err := job.Run(t.Context(), time.Now())
		require.ErrorIs(t, err, loadErr)
		assert.Empty(t, publisher.published)
	})

	t.Run("one publisher fails", func(t *testing.T) {
		publishErr := errors.New("broker down")
		failing, working := &stubPublisher{err: publishErr}, &stubPublisher{}

		job := service.NewSalesReportJob(&stubOrders{}, []port.ReportPublisher{failing, working}, true, time.UTC, zap.NewNop(), nil)

		_, err := job.Run(t.Context(), time.Now())
		require.ErrorIs(t, err, publishErr)
		assert.Len(t, working.published, 1)
	})
}
