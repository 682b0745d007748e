package cart

import (
	"context"
	"sort"

	"github.com/go-faster/errors"

	"github.com/mateusvc/loja-escolar/internal/domain/order"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

// Orders is the slice of the order engine the cart needs for checkout.
type Orders interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
}

// Service manages per-user carts. The cart is a draft: stock is neither
// checked nor reserved until checkout, which delegates to the order
// placement engine.
type Service struct {
	carts    Repository
	products product.Repository
	orders   Orders
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository, orders Orders) *Service {
	return &Service{
		carts:    carts,
		products: products,
		orders:   orders,
	}
}

// Add merges qty units of a product into the cart. The product must exist;
// product.ErrNotFound passes through.
func (s *Service) Add(ctx context.Context, userID, productID int64, qty int) (*Cart, error) {
	if qty <= 0 {
		qty = 1
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if err := s.carts.SetQuantity(ctx, userID, productID, current[productID]+qty); err != nil {
		return nil, errors.Wrap(err, "store cart item")
	}

	return s.Get(ctx, userID)
}

// Update sets the absolute quantity of a cart item. A quantity of zero or
// less removes the item, matching the PUT semantics of the cart API.
func (s *Service) Update(ctx context.Context, userID, productID int64, qty int) (*Cart, error) {
	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if _, ok := current[productID]; !ok {
		return nil, ErrItemNotFound
	}

	if qty <= 0 {
		err = s.carts.Remove(ctx, userID, productID)
	} else {
		err = s.carts.SetQuantity(ctx, userID, productID, qty)
	}
	if err != nil {
		return nil, errors.Wrap(err, "update cart item")
	}

	return s.Get(ctx, userID)
}

// Remove deletes one product from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID int64) (*Cart, error) {
	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if _, ok := current[productID]; !ok {
		return nil, ErrItemNotFound
	}
	if err := s.carts.Remove(ctx, userID, productID); err != nil {
		return nil, errors.Wrap(err, "remove cart item")
	}

	return s.Get(ctx, userID)
}

// Get loads the cart and joins it with the live catalog. Items whose
// product has been deleted since they were added are dropped silently.
func (s *Service) Get(ctx context.Context, userID int64) (*Cart, error) {
	quantities, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	c := &Cart{UserID: userID, Items: make([]Item, 0, len(quantities))}
	for _, pid := range sortedIDs(quantities) {
		p, err := s.products.GetByID(ctx, pid)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			return nil, errors.Wrapf(err, "load product %d", pid)
		}

		qty := quantities[pid]
		lineTotal := p.Price.MulInt(qty).Quantize()
		c.Items = append(c.Items, Item{Product: *p, Quantity: qty, LineTotal: lineTotal})
		c.Total = c.Total.Add(lineTotal)
	}
	c.Total = c.Total.Quantize()

	return c, nil
}

// Checkout converts the cart into an order via the placement engine and
// clears the cart only after the order committed. Placement failures leave
// the cart untouched so the client can adjust and retry.
func (s *Service) Checkout(ctx context.Context, userID int64, couponCode string) (*order.Order, error) {
	quantities, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(quantities) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]order.Line, 0, len(quantities))
	for _, pid := range sortedIDs(quantities) {
		lines = append(lines, order.Line{ProductID: pid, Quantity: quantities[pid]})
	}

	o, err := s.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:     &userID,
		Lines:      lines,
		CouponCode: couponCode,
	})
	if err != nil {
		return nil, err
	}

	// The order is already committed; a dangling cart is preferable to a
	// failed checkout response.
	_ = s.carts.Clear(ctx, userID)

	return o, nil
}

// sortedIDs returns map keys in ascending order. Carts are stored as hashes
// with no ordering; sorting keeps responses and checkout line order stable.
func sortedIDs(m map[int64]int) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
