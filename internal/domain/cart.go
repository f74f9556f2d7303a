package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID     uuid.UUID
	UserID string
	Items  []CartItem

	CreatedAt time.Time
}

type CartItem struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	// Product is the current catalog view; cart lines are not price-locked.
	Product Product

	CreatedAt time.Time
}

type CartSummary struct {
	Cart      Cart
	Subtotal  Money
	ItemCount int
}
