package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Reason messages surfaced by the standalone coupon validation endpoint.
// Checkout callers ignore them and simply apply zero discount.
const (
	ReasonValid    = "coupon is valid"
	ReasonNotFound = "coupon not found"
	ReasonInactive = "coupon is inactive"
	ReasonExpired  = "coupon has expired"
)

// Result is the outcome of validating a coupon code.
type Result struct {
	Applicable      bool
	DiscountPercent int
	Code            string
	Reason          string
}

// Validator checks whether a coupon code yields a discount at a given moment.
// A non-applicable coupon is not an error: the Result carries the reason.
// Errors are reserved for storage failures.
type Validator interface {
	Validate(ctx context.Context, code string, now time.Time) (Result, error)
}

var _ Validator = (*RepoValidator)(nil)

// RepoValidator implements Validator by looking coupons up in a Repository.
type RepoValidator struct {
	repo Repository
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo}
}

// Validate looks up the code (case-insensitive) and checks the active flag
// and expiry. A coupon is applicable only when it is active and either has
// no valid_until or valid_until is after now.
func (v *RepoValidator) Validate(ctx context.Context, code string, now time.Time) (Result, error) {
	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{Code: code, Reason: ReasonNotFound}, nil
		}
		return Result{}, errors.Wrap(err, "lookup coupon")
	}

	if !c.Active {
		return Result{Code: c.Code, Reason: ReasonInactive}, nil
	}
	if c.ValidUntil != nil && !c.ValidUntil.After(now) {
		return Result{Code: c.Code, Reason: ReasonExpired}, nil
	}

	return Result{
		Applicable:      true,
		DiscountPercent: c.DiscountPercent,
		Code:            c.Code,
		Reason:          ReasonValid,
	}, nil
}
