package domain

import (
	"github.com/google/uuid"
)

type StockSignalKind string

const (
	SignalLowStock StockSignalKind = "low_stock"
	SignalSoldOut  StockSignalKind = "sold_out"
)

type StockSignal struct {
	Kind          StockSignalKind `json:"kind"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	StockQuantity int             `json:"stock_quantity"`
	Threshold     int             `json:"threshold"`
}
