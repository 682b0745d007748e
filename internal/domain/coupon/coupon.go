package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Repository.FindByCode when no coupon exists
// with the given code.
var ErrNotFound = errors.New("coupon not found")

// Coupon is a percentage discount code. Coupons are read-only from the
// checkout path; they are never mutated by order placement.
type Coupon struct {
	ID              int64
	Code            string
	DiscountPercent int
	Active          bool
	ValidUntil      *time.Time
	CreatedAt       time.Time
}

// Repository provides coupon lookup. FindByCode matches case-insensitively
// and returns inactive coupons too, so the validator can distinguish
// "not found" from "inactive".
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}
