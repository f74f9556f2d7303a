package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SummarizeSales aggregates completed orders into a report. It has no side effects and
// returns zero totals with an empty product list for no orders.
func SummarizeSales(orders []domain.Order, date time.Time) domain.SalesReport {
	report := domain.SalesReport{
		TotalRevenue: decimal.Zero,
		TotalOrders:  len(orders),
		ProductsSold: []domain.ProductSales{},
		Date:         date,
	}

	position := make(map[uuid.UUID]int)

	for _, order := range orders {
		report.TotalRevenue = report.TotalRevenue.Add(order.Total.Amount)

		for _, item := range order.Items {
			report.TotalItemsSold += item.Quantity

			i, ok := position[item.ProductID]
			if !ok {
				i = len(report.ProductsSold)
				position[item.ProductID] = i
				report.ProductsSold = append(report.ProductsSold, domain.ProductSales{
					ProductID: item.ProductID,
					Name:      item.ProductName,
					Revenue:   decimal.Zero,
				})
			}

			sold := &report.ProductsSold[i]
			sold.Quantity += item.Quantity
			// each item's own snapshot price
			sold.Revenue = sold.Revenue.Add(item.Subtotal().Amount)
		}
	}

	// stable: equal quantities keep first-encountered order
	slices.SortStableFunc(report.ProductsSold, func(a, b domain.ProductSales) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})

	return report
}

// SalesReportJob builds the report for one calendar day and hands it to every publisher.
// When to run it is decided outside.
type SalesReportJob struct {
	orders     port.OrderRepository
	publishers []port.ReportPublisher
	enabled    bool
	location   *time.Location
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *Metrics
}

func NewSalesReportJob(
	orders port.OrderRepository,
	publishers []port.ReportPublisher,
	enabled bool,
	location *time.Location,
	logger *zap.Logger,
	metrics *Metrics,
) *SalesReportJob {
	if location == nil {
		location = time.UTC
	}

	return &SalesReportJob{
		orders:     orders,
		publishers: publishers,
		enabled:    enabled,
		location:   location,
		logger:     logger.Named("sales_report"),
		tracer:     otel.Tracer(tracerName),
		metrics:    metrics,
	}
}

// Run reports on orders completed during the calendar day containing day.
// A disabled job returns a zero report and no error.
func (j *SalesReportJob) Run(ctx context.Context, day time.Time) (domain.SalesReport, error) {
	if !j.enabled {
		j.logger.Warn("sales reports are disabled")
		return domain.SalesReport{}, nil
	}

	y, m, d := day.In(j.location).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, j.location)
	to := from.AddDate(0, 0, 1)

	ctx, span := j.tracer.Start(ctx, "sales_report", trace.WithAttributes(
		attribute.String("report.date", from.Format(time.DateOnly)),
	))
	defer span.End()

	report, err := j.run(ctx, from, to)
	j.metrics.report(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sales report failed")
		j.logger.Error("sales report failed", zap.String("date", from.Format(time.DateOnly)), zap.Error(err))
		return report, err
	}

	return report, nil
}

func (j *SalesReportJob) run(ctx context.Context, from, to time.Time) (domain.SalesReport, error) {
	orders, err := j.orders.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("orders.ListCompletedBetween: %w", err)
	}

	report := SummarizeSales(orders, from)

	j.logger.Info("sales report generated",
		zap.String("date", from.Format(time.DateOnly)),
		zap.Int("orders", report.TotalOrders),
		zap.String("revenue", report.TotalRevenue.StringFixed(2)),
		zap.Int("items_sold", report.TotalItemsSold),
	)

	var errs []error
	for _, publisher := range j.publishers {
		if err := publisher.PublishReport(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("publish report: %w", err)
	}

	return report, nil
}
