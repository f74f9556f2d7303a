package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

type Order struct {
	ID     uuid.UUID
	UserID string
	Total  Money
	Status OrderStatus
	Items  []OrderItem

	CreatedAt time.Time
}

type OrderItem struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	// Price is the catalog price captured at checkout.
	Price Money
}

func (i OrderItem) Subtotal() Money {
	return i.Price.Times(i.Quantity)
}
