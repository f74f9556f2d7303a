package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
	"github.com/nikolayk812/storefront-core/internal/port"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// CartService validates cart mutations against the catalog before they reach the cart store.
type CartService struct {
	carts    port.CartRepository
	catalog  port.ProductCatalog
	currency currency.Unit
	logger   *zap.Logger
}

func NewCartService(carts port.CartRepository, catalog port.ProductCatalog, cur currency.Unit, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		catalog:  catalog,
		currency: cur,
		logger:   logger.Named("cart"),
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (domain.CartSummary, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	return SummarizeCart(cart, s.currency)
}

func (s *CartService) AddToCart(ctx context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidQuantity)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	// the line after the add must still be coverable by current stock
	wanted := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID {
			wanted += item.Quantity
		}
	}

	if product.StockQuantity < wanted {
		return domain.CartItem{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
		}
	}

	item, err := s.carts.AddItem(ctx, cart.ID, productID, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.AddItem: %w", err)
	}

	s.logger.Debug("item added",
		zap.String("user_id", userID),
		zap.Stringer("product_id", productID),
		zap.Int("quantity", item.Quantity),
	)

	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidQuantity)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	if product.StockQuantity < quantity {
		return domain.CartItem{}, fmt.Errorf("%w: requested %d exceeds available stock %d",
			domain.ErrInvalidQuantity, quantity, product.StockQuantity)
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	item, err := s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("carts.SetItemQuantity: %w", err)
	}

	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID string, productID uuid.UUID) error {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return fmt.Errorf("carts.RemoveItem: %w", err)
	}

	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("carts.Clear: %w", err)
	}

	return nil
}

// SummarizeCart derives the subtotal and unit count of a cart at current catalog prices.
func SummarizeCart(cart domain.Cart, cur currency.Unit) (domain.CartSummary, error) {
	summary := domain.CartSummary{
		Cart:     cart,
		Subtotal: domain.ZeroMoney(cur),
	}

	for _, item := range cart.Items {
		subtotal, err := summary.Subtotal.Add(item.Product.Price.Times(item.Quantity))
		if err != nil {
			return domain.CartSummary{}, fmt.Errorf("product[%s]: %w", item.ProductID, err)
		}

		summary.Subtotal = subtotal
		summary.ItemCount += item.Quantity
	}

	return summary, nil
}
