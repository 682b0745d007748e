package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order placement.
var (
	// ErrEmptyItems rejects a request with no lines, before touching storage.
	ErrEmptyItems = errors.New("items required")
	// ErrNotFound is returned when reading an order that does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStorageConflict signals a concurrent modification detected at write
	// time; the transaction was rolled back and the client may retry.
	ErrStorageConflict = errors.New("storage conflict, retry the order")
)

// InvalidQuantityError indicates a line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// InvalidProductIDError indicates a line with a non-positive product id.
type InvalidProductIDError struct {
	ProductID int64
}

func (e *InvalidProductIDError) Error() string {
	return fmt.Sprintf("product id must be greater than 0, got %d", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// OutOfStockError indicates a product with zero stock remaining.
type OutOfStockError struct {
	ProductID int64
	Name      string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %q (%d) is out of stock", e.Name, e.ProductID)
}

// InsufficientStockError indicates a requested quantity above available stock.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (%d): available %d, requested %d",
		e.Name, e.ProductID, e.Available, e.Requested)
}
