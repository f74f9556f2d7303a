package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-core/internal/domain"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error)
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, bool, error)
}
