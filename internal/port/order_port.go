package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
)

type OrderRepository interface {
	// Create inserts the order header and returns it with ID, status and CreatedAt set.
	Create(ctx context.Context, userID string, total domain.Money) (domain.Order, error)
	AddItem(ctx context.Context, item domain.OrderItem) error
	MarkCompleted(ctx context.Context, orderID uuid.UUID) error
	FindForUser(ctx context.Context, userID string, orderID uuid.UUID) (domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}
