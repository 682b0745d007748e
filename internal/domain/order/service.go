package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mateusvc/loja-escolar/internal/domain/coupon"
	"github.com/mateusvc/loja-escolar/internal/domain/money"
)

// Service is the order placement engine. It validates requested lines
// against live stock under row locks, computes subtotal/discount/total with
// exact decimal arithmetic, and persists the order atomically with the stock
// decrement. It is the only component with multi-step invariants spanning
// several records.
type Service struct {
	store   CheckoutStore
	coupons coupon.Validator
	now     func() time.Time

	tracer trace.Tracer
	placed metric.Int64Counter
}

// NewService creates an order Service with the required dependencies.
func NewService(store CheckoutStore, coupons coupon.Validator) *Service {
	meter := otel.Meter("loja.order")
	placed, _ := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders successfully placed"))
	return &Service{
		store:   store,
		coupons: coupons,
		now:     time.Now,
		tracer:  otel.Tracer("loja.order"),
		placed:  placed,
	}
}

// PlaceOrder executes the checkout as a single atomic unit of work.
//
// Lines are processed in caller order. Duplicate product ids are NOT merged:
// each line is checked and decremented against the stock visible at that
// point in the loop, so a second line for the same product can fail even
// when the first succeeded.
//
// A coupon that is unknown, inactive, or expired does not abort the order;
// it applies zero discount. Any other failure rolls back the whole unit: no
// order row, no items, no stock change survive a failed attempt.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder",
		trace.WithAttributes(attribute.Int("order.lines", len(req.Lines))))
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, ErrEmptyItems
	}
	for _, line := range req.Lines {
		if line.ProductID <= 0 {
			return nil, &InvalidProductIDError{ProductID: line.ProductID}
		}
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
	}

	var placed *Order
	err := s.store.Checkout(ctx, func(tx CheckoutTx) error {
		subtotal := money.Zero
		items := make([]Item, 0, len(req.Lines))

		for _, line := range req.Lines {
			p, err := tx.LockProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}

			if p.Stock == 0 {
				return &OutOfStockError{ProductID: p.ID, Name: p.Name}
			}
			if p.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductID: p.ID,
					Name:      p.Name,
					Available: p.Stock,
					Requested: line.Quantity,
				}
			}

			// Decrement within the loop so a later line for the same product
			// is validated against the post-decrement stock.
			if err := tx.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				return err
			}
			p.Stock -= line.Quantity

			lineTotal := p.Price.MulInt(line.Quantity)
			subtotal = subtotal.Add(lineTotal)

			items = append(items, Item{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				LineTotal: lineTotal,
				Product:   *p,
			})
		}

		subtotal = subtotal.Quantize()

		discount := money.Zero
		if req.CouponCode != "" {
			res, err := s.coupons.Validate(ctx, req.CouponCode, s.now())
			if err != nil {
				return errors.Wrap(err, "validate coupon")
			}
			if res.Applicable {
				discount = subtotal.Percent(res.DiscountPercent).Quantize()
			}
		}

		o := &Order{
			UserID:         req.UserID,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			TotalFinal:     subtotal.Sub(discount).Quantize(),
			CouponCode:     req.CouponCode,
			Items:          items,
		}
		for i := range o.Items {
			o.Items[i].LineTotal = o.Items[i].LineTotal.Quantize()
		}

		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}

		placed = o
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("order.discounted", placed.DiscountAmount.IsPositive()),
	))
	return placed, nil
}
