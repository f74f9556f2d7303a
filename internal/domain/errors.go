package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrInvalidProductSort = errors.New("invalid product sort")

	// ErrCheckoutConflict reports a checkout aborted by lock contention
	// (deadlock, serialization failure, lock timeout). The caller may retry.
	ErrCheckoutConflict = errors.New("checkout conflicted with a concurrent update")
)

type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s, available: %d", e.ProductName, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsRetryable reports whether a failed checkout may succeed when attempted again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCheckoutConflict) || errors.Is(err, ErrInsufficientStock)
}
