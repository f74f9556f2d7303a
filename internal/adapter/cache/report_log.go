package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/redis/go-redis/v9"
)

const (
	reportLogKey = "storefront:notifications:daily_sales"

	DefaultReportMaxEntries = 7
	DefaultReportMaxAge     = 7 * 24 * time.Hour
)

type ReportEntry struct {
	ID      uuid.UUID          `json:"id"`
	Report  domain.SalesReport `json:"report"`
	Message string             `json:"message"`
	SentAt  time.Time          `json:"sent_at"`
}

func (e ReportEntry) sentTime() time.Time { return e.SentAt }

// ReportLog keeps the last daily sales reports.
type ReportLog struct {
	list boundedList[ReportEntry]
	now  func() time.Time
}

var _ port.ReportPublisher = (*ReportLog)(nil)

func NewReportLog(rdb *redis.Client, maxEntries int, maxAge time.Duration) *ReportLog {
	if maxEntries < 1 {
		maxEntries = DefaultReportMaxEntries
	}
	if maxAge <= 0 {
		maxAge = DefaultReportMaxAge
	}

	return &ReportLog{
		list: boundedList[ReportEntry]{
			rdb:        rdb,
			key:        reportLogKey,
			maxEntries: maxEntries,
			maxAge:     maxAge,
		},
		now: time.Now,
	}
}

func (l *ReportLog) PublishReport(ctx context.Context, report domain.SalesReport) error {
	entry := ReportEntry{
		ID:     uuid.New(),
		Report: report,
		Message: fmt.Sprintf("Daily report: %d orders, %s revenue",
			report.TotalOrders, report.TotalRevenue.StringFixed(2)),
		SentAt: l.now().UTC(),
	}

	if err := l.list.push(ctx, entry); err != nil {
		return fmt.Errorf("list.push: %w", err)
	}

	return nil
}

// Recent returns retained reports, newest first.
func (l *ReportLog) Recent(ctx context.Context) ([]ReportEntry, error) {
	entries, err := l.list.recent(ctx, l.now())
	if err != nil {
		return nil, fmt.Errorf("list.recent: %w", err)
	}

	return entries, nil
}
