package repository

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/storefront-core/internal/db"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func mapMoney(amount decimal.Decimal, currencyCode string) (domain.Money, error) {
	// CHAR(3) columns come back space padded
	code := strings.TrimSpace(currencyCode)

	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return domain.Money{Amount: amount, Currency: parsedCurrency}, nil
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:            row.ID,
		Name:          row.Name,
		Price:         price,
		StockQuantity: int(row.StockQuantity),
		CreatedAt:     row.CreatedAt,
	}, nil
}

func mapOrderToDomain(row db.Order) (domain.Order, error) {
	total, err := mapMoney(row.TotalAmount, row.TotalCurrency)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:        row.ID,
		UserID:    row.UserID,
		Total:     total,
		Status:    domain.OrderStatus(row.Status),
		CreatedAt: row.CreatedAt,
	}, nil
}

func mapGetOrderItemsRowToDomain(row db.GetOrderItemsRow) (domain.OrderItem, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.OrderItem{}, err
	}

	return domain.OrderItem{
		OrderID:     row.OrderID,
		ProductID:   row.ProductID,
		ProductName: row.Name,
		Quantity:    int(row.Quantity),
		Price:       price,
	}, nil
}
