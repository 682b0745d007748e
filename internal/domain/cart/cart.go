package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

var (
	// ErrEmptyCart is returned when checking out a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrItemNotFound is returned when updating or removing an absent item.
	ErrItemNotFound = errors.New("item not in cart")
)

// Item is one cart line joined with its live catalog state. Unlike order
// items, cart lines carry no price snapshot: totals are recomputed from the
// current catalog on every read.
type Item struct {
	Product   product.Product
	Quantity  int
	LineTotal money.Money
}

// Cart is a user's pending selection with live totals.
type Cart struct {
	UserID int64
	Items  []Item
	Total  money.Money
}

// Repository stores cart contents keyed by user id. Quantities only; the
// catalog is joined at read time.
type Repository interface {
	// Get returns the cart's product id -> quantity map. An absent cart is
	// an empty map, not an error.
	Get(ctx context.Context, userID int64) (map[int64]int, error)
	// SetQuantity stores the absolute quantity for a product.
	SetQuantity(ctx context.Context, userID, productID int64, qty int) error
	// Remove deletes one product from the cart.
	Remove(ctx context.Context, userID, productID int64) error
	// Clear deletes the whole cart.
	Clear(ctx context.Context, userID int64) error
}
