package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const tracerName = "github.com/nikolayk812/storefront-core/internal/service"

// CheckoutService turns a user's cart into a completed order in a single transaction.
type CheckoutService struct {
	tx         port.Transactor
	orders     port.OrderRepository
	dispatcher port.SignalDispatcher
	policy     StockAlertPolicy
	currency   currency.Unit
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *Metrics
}

func NewCheckoutService(
	tx port.Transactor,
	orders port.OrderRepository,
	dispatcher port.SignalDispatcher,
	policy StockAlertPolicy,
	cur currency.Unit,
	logger *zap.Logger,
	metrics *Metrics,
) *CheckoutService {
	return &CheckoutService{
		tx:         tx,
		orders:     orders,
		dispatcher: dispatcher,
		policy:     policy,
		currency:   cur,
		logger:     logger.Named("checkout"),
		tracer:     otel.Tracer(tracerName),
		metrics:    metrics,
	}
}

// Checkout commits the cart of userID as an order. Either the order, its items, the stock
// decrements and the cart clear all become visible, or none of them do. Stock signals are
// handed to the dispatcher only after commit.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "checkout", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	var (
		order   domain.Order
		signals []domain.StockSignal
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st port.Stores) error {
		var err error
		order, signals, err = s.placeOrder(ctx, st, userID)
		return err
	})
	s.metrics.checkout(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, checkoutResult(err))
		s.logFailure(userID, err)
		return domain.Order{}, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.lines", len(order.Items)),
		attribute.Int("stock.signals", len(signals)),
	)

	for _, signal := range signals {
		s.metrics.stockSignal(signal.Kind)
	}
	if len(signals) > 0 {
		s.dispatcher.Dispatch(signals...)
	}

	s.logger.Info("order completed",
		zap.String("user_id", userID),
		zap.Stringer("order_id", order.ID),
		zap.Stringer("total", order.Total),
		zap.Int("lines", len(order.Items)),
	)

	return order, nil
}

func (s *CheckoutService) placeOrder(ctx context.Context, st port.Stores, userID string) (domain.Order, []domain.StockSignal, error) {
	cart, err := st.Carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	if len(cart.Items) == 0 {
		return domain.Order{}, nil, domain.ErrEmptyCart
	}

	// ascending product id keeps row lock order identical across concurrent checkouts
	lines := slices.Clone(cart.Items)
	slices.SortFunc(lines, func(a, b domain.CartItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	// advisory, TryDecrement below is authoritative
	for _, line := range lines {
		if line.Product.StockQuantity < line.Quantity {
			return domain.Order{}, nil, &domain.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Available:   line.Product.StockQuantity,
			}
		}
	}

	total := domain.ZeroMoney(s.currency)
	for _, line := range lines {
		total, err = total.Add(line.Product.Price.Times(line.Quantity))
		if err != nil {
			return domain.Order{}, nil, fmt.Errorf("product[%s]: %w", line.ProductID, err)
		}
	}

	order, err := st.Orders.Create(ctx, userID, total)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("orders.Create: %w", err)
	}

	var signals []domain.StockSignal
	items := make([]domain.OrderItem, 0, len(lines))

	for _, line := range lines {
		newStock, ok, err := st.Products.TryDecrement(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return domain.Order{}, nil, fmt.Errorf("products.TryDecrement: %w", err)
		}
		if !ok {
			return domain.Order{}, nil, s.insufficientStock(ctx, st.Products, line)
		}

		item := domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
		}
		if err := st.Orders.AddItem(ctx, item); err != nil {
			return domain.Order{}, nil, fmt.Errorf("orders.AddItem: %w", err)
		}
		items = append(items, item)

		if signal, fire := s.policy.AfterDecrement(line.Product, newStock); fire {
			signals = append(signals, signal)
		}
	}

	if err := st.Orders.MarkCompleted(ctx, order.ID); err != nil {
		return domain.Order{}, nil, fmt.Errorf("orders.MarkCompleted: %w", err)
	}

	if err := st.Carts.Clear(ctx, cart.ID); err != nil {
		return domain.Order{}, nil, fmt.Errorf("carts.Clear: %w", err)
	}

	order.Status = domain.OrderStatusCompleted
	order.Items = items

	return order, signals, nil
}

// insufficientStock builds the error for a decrement lost to a concurrent checkout.
func (s *CheckoutService) insufficientStock(ctx context.Context, catalog port.ProductCatalog, line domain.CartItem) error {
	available := 0

	product, err := catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		s.logger.Warn("reading stock after failed decrement",
			zap.Stringer("product_id", line.ProductID),
			zap.Error(err),
		)
	} else {
		available = product.StockQuantity
	}

	return &domain.InsufficientStockError{
		ProductID:   line.ProductID,
		ProductName: line.Product.Name,
		Available:   available,
	}
}

func (s *CheckoutService) logFailure(userID string, err error) {
	if checkoutResult(err) == resultError {
		s.logger.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	s.logger.Info("checkout rejected",
		zap.String("user_id", userID),
		zap.String("reason", checkoutResult(err)),
		zap.Error(err),
	)
}

func (s *CheckoutService) OrderHistory(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListForUser: %w", err)
	}

	return orders, nil
}

// GetOrder returns ErrOrderNotFound for orders owned by another user.
func (s *CheckoutService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.FindForUser: %w", err)
	}

	return order, nil
}
