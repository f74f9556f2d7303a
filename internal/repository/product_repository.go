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

const DefaultPageSize = 12

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{q: db.New(pool)}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{q: db.New(tx)}
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	product, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, sort domain.ProductSort, limit, offset int) ([]domain.Product, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset is negative")
	}

	var (
		rows []db.Product
		err  error
	)

	switch sort {
	case domain.SortLatest:
		rows, err = r.q.ListProductsLatest(ctx, db.ListProductsLatestParams{Limit: int32(limit), Offset: int32(offset)})
	case domain.SortPriceAsc:
		rows, err = r.q.ListProductsPriceAsc(ctx, db.ListProductsPriceAscParams{Limit: int32(limit), Offset: int32(offset)})
	case domain.SortPriceDesc:
		rows, err = r.q.ListProductsPriceDesc(ctx, db.ListProductsPriceDescParams{Limit: int32(limit), Offset: int32(offset)})
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidProductSort, sort)
	}
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts[%s]: %w", sort, err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		product, err := mapProductToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

func (r *productRepository) TryDecrement(ctx context.Context, productID uuid.UUID, quantity int) (int, bool, error) {
	if quantity < 1 {
		return 0, false, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	// check and decrement happen in one conditional UPDATE
	newStock, err := r.q.DecrementStock(ctx, db.DecrementStockParams{
		Quantity: int32(quantity),
		ID:       productID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("q.DecrementStock: %w", err)
	}

	return int(newStock), true, nil
}
