package port

import "context"

// Stores groups repositories bound to the same transaction.
type Stores struct {
	Carts    CartRepository
	Products ProductRepository
	Orders   OrderRepository
}

type Transactor interface {
	// WithinTx runs fn in a single transaction. It commits when fn returns nil
	// and rolls back every effect otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
