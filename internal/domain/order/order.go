package order

import (
	"context"
	"time"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

// Order is a confirmed customer order. Orders are immutable once placed:
// there is no update path, and total_final = subtotal - discount_amount
// holds with all three amounts quantized to cents.
type Order struct {
	ID             int64
	UserID         *int64
	Subtotal       money.Money
	DiscountAmount money.Money
	TotalFinal     money.Money
	CouponCode     string
	CreatedAt      time.Time
	Items          []Item
}

// Item is one order line. UnitPrice is a snapshot of the product price at
// placement time; later catalog price changes never alter placed orders.
type Item struct {
	ID        int64
	ProductID int64
	Quantity  int
	UnitPrice money.Money
	LineTotal money.Money

	// Product carries the catalog state observed inside the checkout
	// transaction, for the response payload. It is not persisted with the
	// item and is left zero when an order is re-read from storage history.
	Product product.Product
}

// Line is one (product, quantity) pair of an order request.
type Line struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderRequest is the input to Service.PlaceOrder. UserID is nil for
// anonymous checkouts.
type PlaceOrderRequest struct {
	UserID     *int64
	Lines      []Line
	CouponCode string
}

// CheckoutTx is the transaction handle the placement engine drives. All
// methods operate inside one database transaction; if the callback passed to
// CheckoutStore.Checkout returns an error, every effect is rolled back.
type CheckoutTx interface {
	// LockProduct fetches a product with an exclusive row lock, so two
	// concurrent checkouts cannot both spend the same stock.
	LockProduct(ctx context.Context, id int64) (*product.Product, error)
	// DecrementStock reduces stock by qty, re-checking stock >= qty at write
	// time. Returns ErrStorageConflict when the re-check fails.
	DecrementStock(ctx context.Context, id int64, qty int) error
	// InsertOrder persists the order and its items, filling generated IDs
	// and the creation timestamp.
	InsertOrder(ctx context.Context, o *Order) error
}

// CheckoutStore runs a checkout callback inside a single transaction.
type CheckoutStore interface {
	Checkout(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// Repository provides read access to placed orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, error)
}
