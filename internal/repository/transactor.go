package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/port"
)

type transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) port.Transactor {
	return &transactor{pool: pool}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s port.Stores) error) error {
	_, err := inTx(ctx, t.pool, func(tx pgx.Tx) (struct{}, error) {
		stores := port.Stores{
			Carts:    NewCartWithTx(tx),
			Products: NewProductWithTx(tx),
			Orders:   NewOrderWithTx(tx),
		}

		return struct{}{}, fn(ctx, stores)
	})

	return classifyTxError(err)
}
