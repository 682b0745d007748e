package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrSKUConflict is returned when a create or update would duplicate a SKU.
	ErrSKUConflict = errors.New("sku already exists")
)

// Product represents a catalog item available for purchase.
// Stock is never negative; the checkout transaction and a database CHECK
// constraint both enforce it.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       money.Money
	Stock       int
	Category    string
	SKU         *string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SortField enumerates the supported catalog sort keys.
type SortField string

const (
	SortByName  SortField = "name"
	SortByPrice SortField = "price"
)

// Query holds catalog listing parameters. Zero values fall back to
// name-ascending, page 1, page size 12.
type Query struct {
	Search     string
	Sort       SortField
	Descending bool
	Page       int
	PageSize   int
}

// Normalize clamps paging values and applies defaults.
func (q Query) Normalize() Query {
	if q.Sort != SortByPrice {
		q.Sort = SortByName
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 12
	}
	return q
}

// Repository defines catalog persistence. Stock mutation is deliberately
// absent here: decrements happen only inside the checkout transaction.
type Repository interface {
	List(ctx context.Context, q Query) (items []Product, total int, err error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
