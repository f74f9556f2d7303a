package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_products.up.sql",
			"../migrations/02_carts.up.sql",
			"../migrations/03_orders.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func insertProduct(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) domain.Product {
	t.Helper()

	product := domain.Product{
		Name:          name,
		Price:         domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.USD},
		StockQuantity: stock,
	}

	err := pool.QueryRow(t.Context(),
		`INSERT INTO products (name, price_amount, price_currency, stock_quantity)
		 VALUES ($1, $2, 'USD', $3)
		 RETURNING id, created_at`,
		product.Name, product.Price.Amount, product.StockQuantity,
	).Scan(&product.ID, &product.CreatedAt)
	require.NoError(t, err)

	return product
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(t.Context(), "SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	require.NoError(t, err)

	return stock
}

func countOrders(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var count int
	err := pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM orders").Scan(&count)
	require.NoError(t, err)

	return count
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(t.Context(), "TRUNCATE TABLE order_items, orders, cart_items, carts, products CASCADE")
	require.NoError(t, err)
}
