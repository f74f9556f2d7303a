package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestMoney(t *testing.T) {
	price := domain.Money{Amount: decimal.RequireFromString("19.99"), Currency: currency.EUR}

	line := price.Times(3)
	assert.Equal(t, "59.97 EUR", line.String())

	sum, err := domain.ZeroMoney(currency.EUR).Add(line)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(line.Amount))

	_, err = sum.Add(domain.ZeroMoney(currency.USD))
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestParseProductSort(t *testing.T) {
	tests := []struct {
		raw       string
		want      domain.ProductSort
		wantError bool
	}{
		{raw: "", want: domain.SortLatest},
		{raw: "latest", want: domain.SortLatest},
		{raw: "price-asc", want: domain.SortPriceAsc},
		{raw: "price-desc", want: domain.SortPriceDesc},
		{raw: "price_asc; DROP TABLE products", wantError: true},
		{raw: "PRICE-ASC", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.ParseProductSort(tt.raw)
			if tt.wantError {
				require.ErrorIs(t, err, domain.ErrInvalidProductSort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := fmt.Errorf("checkout: %w", &domain.InsufficientStockError{
		ProductID:   uuid.New(),
		ProductName: "Lamp",
		Available:   2,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.EqualError(t, err, "checkout: insufficient stock for Lamp, available: 2")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, domain.IsRetryable(&domain.InsufficientStockError{}))
	assert.True(t, domain.IsRetryable(fmt.Errorf("%w: 40P01", domain.ErrCheckoutConflict)))
	assert.False(t, domain.IsRetryable(domain.ErrEmptyCart))
	assert.False(t, domain.IsRetryable(errors.New("syntax error")))
	assert.False(t, domain.IsRetryable(nil))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := domain.OrderItem{Quantity: 4, Price: domain.Money{Amount: decimal.RequireFromString("2.50"), Currency: currency.USD}}
	assert.Equal(t, "10.00 USD", item.Subtotal().String())
}
