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
	notificationLogKey = "storefront:notifications:stock"

	DefaultNotificationMaxEntries = 10
	DefaultNotificationMaxAge     = 24 * time.Hour
)

type NotificationEntry struct {
	ID     uuid.UUID          `json:"id"`
	Signal domain.StockSignal `json:"signal"`
	// Message is the human readable line shown to shop admins.
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

func (e NotificationEntry) sentTime() time.Time { return e.SentAt }

// NotificationLog keeps the most recent stock notifications for the admin view.
// It holds at most MaxEntries entries, none older than MaxAge.
type NotificationLog struct {
	list boundedList[NotificationEntry]
	now  func() time.Time
}

var _ port.StockNotifier = (*NotificationLog)(nil)

func NewNotificationLog(rdb *redis.Client, maxEntries int, maxAge time.Duration) *NotificationLog {
	if maxEntries < 1 {
		maxEntries = DefaultNotificationMaxEntries
	}
	if maxAge <= 0 {
		maxAge = DefaultNotificationMaxAge
	}

	return &NotificationLog{
		list: boundedList[NotificationEntry]{
			rdb:        rdb,
			key:        notificationLogKey,
			maxEntries: maxEntries,
			maxAge:     maxAge,
		},
		now: time.Now,
	}
}

func (l *NotificationLog) NotifyStock(ctx context.Context, signal domain.StockSignal) error {
	entry := NotificationEntry{
		ID:      uuid.New(),
		Signal:  signal,
		Message: StockMessage(signal),
		SentAt:  l.now().UTC(),
	}

	if err := l.list.push(ctx, entry); err != nil {
		return fmt.Errorf("list.push: %w", err)
	}

	return nil
}

// Recent returns retained notifications, newest first.
func (l *NotificationLog) Recent(ctx context.Context) ([]NotificationEntry, error) {
	entries, err := l.list.recent(ctx, l.now())
	if err != nil {
		return nil, fmt.Errorf("list.recent: %w", err)
	}

	return entries, nil
}

func StockMessage(signal domain.StockSignal) string {
	if signal.Kind == domain.SignalSoldOut {
		return fmt.Sprintf("Sold out: %s has no units left!", signal.ProductName)
	}

	return fmt.Sprintf("Low stock alert: %s has only %d units left!", signal.ProductName, signal.StockQuantity)
}
