package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesReport is built on demand from a set of orders and never mutated afterwards.
// Amounts are in the store currency.
type SalesReport struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalOrders    int             `json:"total_orders"`
	TotalItemsSold int             `json:"total_items_sold"`
	ProductsSold   []ProductSales  `json:"products_sold"`
	Date           time.Time       `json:"date"`
}

type ProductSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}
