package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/db"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	if userID == "" {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := q.UpsertCart(ctx, userID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		rows, err := q.GetCartItems(ctx, dbCart.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
		}

		items, err := mapGetCartItemsRowsToDomain(rows)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapGetCartItemsRowsToDomain: %w", err)
		}

		return domain.Cart{
			ID:        dbCart.ID,
			UserID:    dbCart.UserID,
			Items:     items,
			CreatedAt: dbCart.CreatedAt,
		}, nil
	})
}

func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.CartItem, error) {
		err := q.AddCartItem(ctx, db.AddCartItemParams{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  int32(quantity),
		})
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.CartItem{}, fmt.Errorf("q.AddCartItem: %w", domain.ErrProductNotFound)
			}
			return domain.CartItem{}, fmt.Errorf("q.AddCartItem: %w", err)
		}

		return getCartItem(ctx, q, cartID, productID)
	})
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.CartItem, error) {
		rowsAffected, err := q.SetCartItemQuantity(ctx, db.SetCartItemQuantityParams{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  int32(quantity),
		})
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("q.SetCartItemQuantity: %w", err)
		}
		if rowsAffected == 0 {
			return domain.CartItem{}, domain.ErrItemNotFound
		}

		return getCartItem(ctx, q, cartID, productID)
	})
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	rowsAffected, err := r.q.DeleteCartItem(ctx, db.DeleteCartItemParams{
		CartID:    cartID,
		ProductID: productID,
	})
	if err != nil {
		return fmt.Errorf("q.DeleteCartItem: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.q.ClearCart(ctx, cartID); err != nil {
		return fmt.Errorf("q.ClearCart: %w", err)
	}

	return nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, bool, error) {
	item, err := getCartItem(ctx, r.q, cartID, productID)
	if errors.Is(err, domain.ErrItemNotFound) {
		return domain.CartItem{}, false, nil
	}
	if err != nil {
		return domain.CartItem{}, false, err
	}

	return item, true, nil
}

func getCartItem(ctx context.Context, q *db.Queries, cartID, productID uuid.UUID) (domain.CartItem, error) {
	row, err := q.GetCartItem(ctx, db.GetCartItemParams{
		CartID:    cartID,
		ProductID: productID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartItem{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("q.GetCartItem: %w", err)
	}

	item, err := mapGetCartItemsRowToDomain(db.GetCartItemsRow(row))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapGetCartItemsRowToDomain: %w", err)
	}

	return item, nil
}

func mapGetCartItemsRowToDomain(row db.GetCartItemsRow) (domain.CartItem, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		CartID:    row.CartID,
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Product: domain.Product{
			ID:            row.ProductID,
			Name:          row.Name,
			Price:         price,
			StockQuantity: int(row.StockQuantity),
			CreatedAt:     row.ProductCreatedAt,
		},
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapGetCartItemsRowsToDomain(rows []db.GetCartItemsRow) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapGetCartItemsRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartItemsRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
