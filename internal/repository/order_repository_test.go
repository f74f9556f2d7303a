package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/nikolayk812/storefront-core/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type orderRepositorySuite struct {
	suite.Suite

	repo       port.OrderRepository
	transactor port.Transactor
	pool       *pgxpool.Pool
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(orderRepositorySuite))
}

func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewOrder(suite.pool)
	suite.transactor = repository.NewTransactor(suite.pool)
}

func (suite *orderRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

// placeOrder writes a completed order the way checkout does, inside one transaction.
func (suite *orderRepositorySuite) placeOrder(t *testing.T, userID string, lines map[domain.Product]int) domain.Order {
	t.Helper()

	total := domain.ZeroMoney(usd("0").Currency)
	for product, qty := range lines {
		var err error
		total, err = total.Add(product.Price.Times(qty))
		require.NoError(t, err)
	}

	var order domain.Order
	err := suite.transactor.WithinTx(t.Context(), func(ctx context.Context, s port.Stores) error {
		var err error
		order, err = s.Orders.Create(ctx, userID, total)
		if err != nil {
			return err
		}

		for product, qty := range lines {
			err = s.Orders.AddItem(ctx, domain.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
				Price:       product.Price,
			})
			if err != nil {
				return err
			}
		}

		return s.Orders.MarkCompleted(ctx, order.ID)
	})
	require.NoError(t, err)

	return order
}

func (suite *orderRepositorySuite) TestCreateAndFind() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	a := insertProduct(t, suite.pool, usd("25.00"), 10)
	b := insertProduct(t, suite.pool, usd("45.00"), 10)

	userID := gofakeit.UUID()
	placed := suite.placeOrder(t, userID, map[domain.Product]int{a: 2, b: 1})

	got, err := suite.repo.FindForUser(ctx, userID, placed.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, got.Status)
	assert.Equal(t, "95.00", got.Total.Amount.StringFixed(2))
	assert.Equal(t, "USD", got.Total.Currency.String())
	require.Len(t, got.Items, 2)

	sum := domain.ZeroMoney(got.Total.Currency)
	for _, item := range got.Items {
		sum, err = sum.Add(item.Subtotal())
		require.NoError(t, err)
	}
	assert.True(t, got.Total.Amount.Equal(sum.Amount))

	// another user's order is invisible
	_, err = suite.repo.FindForUser(ctx, gofakeit.UUID(), placed.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = suite.repo.FindForUser(ctx, "", placed.ID)
	require.EqualError(t, err, "userID is empty")
}

func (suite *orderRepositorySuite) TestMarkCompleted_OnlyFromPending() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	order, err := suite.repo.Create(ctx, gofakeit.UUID(), usd("10.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	require.NoError(t, suite.repo.MarkCompleted(ctx, order.ID))

	err = suite.repo.MarkCompleted(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	err = suite.repo.MarkCompleted(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func (suite *orderRepositorySuite) TestItemPriceIsSnapshot() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	product := insertProduct(t, suite.pool, usd("10.00"), 10)
	userID := gofakeit.UUID()
	placed := suite.placeOrder(t, userID, map[domain.Product]int{product: 3})

	_, err := suite.pool.Exec(ctx, "UPDATE products SET price_amount = 99.00 WHERE id = $1", product.ID)
	require.NoError(t, err)

	got, err := suite.repo.FindForUser(ctx, userID, placed.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "10.00", got.Items[0].Price.Amount.StringFixed(2))
	assert.Equal(t, "30.00", got.Total.Amount.StringFixed(2))
}

func (suite *orderRepositorySuite) TestListForUser() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	product := insertProduct(t, suite.pool, usd("1.00"), 100)
	userID := gofakeit.UUID()

	first := suite.placeOrder(t, userID, map[domain.Product]int{product: 1})
	second := suite.placeOrder(t, userID, map[domain.Product]int{product: 2})
	suite.placeOrder(t, gofakeit.UUID(), map[domain.Product]int{product: 3})

	orders, err := suite.repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// newest first
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	none, err := suite.repo.ListForUser(ctx, gofakeit.UUID())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func (suite *orderRepositorySuite) TestListCompletedBetween() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	product := insertProduct(t, suite.pool, usd("4.00"), 100)

	completed := suite.placeOrder(t, gofakeit.UUID(), map[domain.Product]int{product: 1})

	_, err := suite.repo.Create(ctx, gofakeit.UUID(), usd("8.00"))
	require.NoError(t, err)

	old := suite.placeOrder(t, gofakeit.UUID(), map[domain.Product]int{product: 1})
	_, err = suite.pool.Exec(ctx, "UPDATE orders SET created_at = NOW() - INTERVAL '3 days' WHERE id = $1", old.ID)
	require.NoError(t, err)

	now := time.Now()
	orders, err := suite.repo.ListCompletedBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, completed.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)

	_, err = suite.repo.ListCompletedBetween(ctx, now, now)
	require.Error(t, err)
}

func (suite *orderRepositorySuite) TestWithinTx_RollsBack() {
	t := suite.T()
	ctx := t.Context()
	defer truncateAll(t, suite.pool)

	userID := gofakeit.UUID()
	boom := errors.New("boom")

	err := suite.transactor.WithinTx(ctx, func(ctx context.Context, s port.Stores) error {
		if _, err := s.Orders.Create(ctx, userID, usd("1.00")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	orders, err := suite.repo.ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
