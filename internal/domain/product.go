package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID
	Name          string
	Price         Money
	StockQuantity int

	CreatedAt time.Time
}

type ProductSort string

const (
	SortLatest    ProductSort = "latest"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
)

// ParseProductSort maps a raw sort value onto the closed set of catalog orderings.
// An empty value selects SortLatest.
func ParseProductSort(s string) (ProductSort, error) {
	switch ProductSort(s) {
	case "", SortLatest:
		return SortLatest, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidProductSort, s)
}
