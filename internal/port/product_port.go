package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
)

// ProductCatalog is the read-only view of products.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	ListProducts(ctx context.Context, sort domain.ProductSort, limit, offset int) ([]domain.Product, error)
}

// StockLedger is the only writer of product stock.
type StockLedger interface {
	// TryDecrement atomically decrements stock when at least quantity units are available.
	// It returns the stock level after the decrement, or ok=false with nothing changed.
	TryDecrement(ctx context.Context, productID uuid.UUID, quantity int) (newStock int, ok bool, err error)
}

type ProductRepository interface {
	ProductCatalog
	StockLedger
}
