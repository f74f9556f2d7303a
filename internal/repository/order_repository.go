package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/db"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *orderRepository) Create(ctx context.Context, userID string, total domain.Money) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, fmt.Errorf("userID is empty")
	}

	row, err := r.q.InsertOrder(ctx, db.InsertOrderParams{
		UserID:        userID,
		TotalAmount:   total.Amount,
		TotalCurrency: total.Currency.String(),
		Status:        string(domain.OrderStatusPending),
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.InsertOrder: %w", err)
	}

	order, err := mapOrderToDomain(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) AddItem(ctx context.Context, item domain.OrderItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, item.Quantity)
	}

	err := r.q.InsertOrderItem(ctx, db.InsertOrderItemParams{
		OrderID:       item.OrderID,
		ProductID:     item.ProductID,
		Quantity:      int32(item.Quantity),
		PriceAmount:   item.Price.Amount,
		PriceCurrency: item.Price.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("q.InsertOrderItem: %w", err)
	}

	return nil
}

func (r *orderRepository) MarkCompleted(ctx context.Context, orderID uuid.UUID) error {
	rowsAffected, err := r.q.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
		ToStatus:   string(domain.OrderStatusCompleted),
		ID:         orderID,
		FromStatus: string(domain.OrderStatusPending),
	})
	if err != nil {
		return fmt.Errorf("q.UpdateOrderStatus: %w", err)
	}
	// rowsAffected == 0: either not found or no longer pending
	if rowsAffected == 0 {
		return fmt.Errorf("%w: no pending order %s", domain.ErrOrderNotFound, orderID)
	}

	return nil
}

func (r *orderRepository) FindForUser(ctx context.Context, userID string, orderID uuid.UUID) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, fmt.Errorf("userID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		row, err := q.GetOrderForUser(ctx, db.GetOrderForUserParams{
			ID:     orderID,
			UserID: userID,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetOrderForUser: %w", err)
		}

		orders, err := attachItems(ctx, q, []db.Order{row})
		if err != nil {
			return domain.Order{}, err
		}

		return orders[0], nil
	})
}

func (r *orderRepository) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) ([]domain.Order, error) {
		rows, err := q.ListOrdersForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("q.ListOrdersForUser: %w", err)
		}

		return attachItems(ctx, q, rows)
	})
}

func (r *orderRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("from[%s] is not before to[%s]", from, to)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) ([]domain.Order, error) {
		rows, err := q.ListCompletedOrdersBetween(ctx, db.ListCompletedOrdersBetweenParams{
			FromTime: from,
			ToTime:   to,
		})
		if err != nil {
			return nil, fmt.Errorf("q.ListCompletedOrdersBetween: %w", err)
		}

		return attachItems(ctx, q, rows)
	})
}

func attachItems(ctx context.Context, q *db.Queries, rows []db.Order) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(rows))
	if len(rows) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	itemRows, err := q.GetOrderItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	itemsByOrder := make(map[uuid.UUID][]domain.OrderItem, len(rows))
	for _, itemRow := range itemRows {
		item, err := mapGetOrderItemsRowToDomain(itemRow)
		if err != nil {
			return nil, fmt.Errorf("mapGetOrderItemsRowToDomain: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	for _, row := range rows {
		order, err := mapOrderToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapOrderToDomain: %w", err)
		}
		order.Items = itemsByOrder[order.ID]
		orders = append(orders, order)
	}

	return orders, nil
}
