package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/order"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

const (
	// FOR UPDATE serializes concurrent checkouts touching the same product:
	// the second transaction blocks here until the first commits, then sees
	// the decremented stock.
	lockProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	// The stock >= $2 guard is a commit-time re-check on top of the row
	// lock; together with the table's CHECK constraint it makes a negative
	// stock unrepresentable.
	decrementStockSQL = `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	insertOrderSQL = `INSERT INTO orders (user_id, subtotal, discount_amount, total_final, coupon_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	getOrderByIDSQL = `SELECT id, user_id, subtotal, discount_amount, total_final, coupon_code, created_at
		FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT id, product_id, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY id`

	listOrdersByUserSQL = `SELECT id, user_id, subtotal, discount_amount, total_final, coupon_code, created_at
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
)

// SQLSTATEs raised when concurrent transactions collide; both mean "roll
// back and retry".
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

var (
	_ order.CheckoutStore = (*OrderStore)(nil)
	_ order.Repository    = (*OrderStore)(nil)
)

// OrderStore implements both the checkout transaction boundary and read
// access to placed orders.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Checkout runs fn inside one transaction. Rollback is deferred so every
// exit path (business error, panic, commit failure) releases the row locks;
// rollback after a successful commit is a no-op.
func (s *OrderStore) Checkout(ctx context.Context, fn func(tx order.CheckoutTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin checkout tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return order.ErrStorageConflict
		}
		return errors.Wrap(err, "commit checkout tx")
	}
	return nil
}

type checkoutTx struct {
	tx pgx.Tx
}

func (t *checkoutTx) LockProduct(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := t.tx.Query(ctx, lockProductSQL, id)
	if err != nil {
		if isRetryableTxError(err) {
			return nil, order.ErrStorageConflict
		}
		return nil, errors.Wrapf(err, "locking product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &order.ProductNotFoundError{ProductID: id}
		}
		return nil, errors.Wrapf(err, "locking product %d", id)
	}
	return &p, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, id int64, qty int) error {
	tag, err := t.tx.Exec(ctx, decrementStockSQL, id, qty)
	if err != nil {
		if isRetryableTxError(err) {
			return order.ErrStorageConflict
		}
		return errors.Wrapf(err, "decrementing stock of product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrStorageConflict
	}
	return nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.Subtotal.Decimal(), o.DiscountAmount.Decimal(),
		o.TotalFinal.Decimal(), nullableCode(o.CouponCode),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "inserting order")
	}

	for i := range o.Items {
		it := &o.Items[i]
		err := t.tx.QueryRow(ctx, insertOrderItemSQL,
			o.ID, it.ProductID, it.Quantity, it.UnitPrice.Decimal(), it.LineTotal.Decimal(),
		).Scan(&it.ID)
		if err != nil {
			return errors.Wrapf(err, "inserting order item for product %d", it.ProductID)
		}
	}
	return nil
}

// GetByID returns an order with its items.
func (s *OrderStore) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := s.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	itemRows, err := s.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting items of order %d", id)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning items of order %d", id)
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first, without items.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]order.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, listOrdersByUserSQL, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders of user %d", userID)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                         order.Order
		subtotal, discount, total decimal.Decimal
		couponCode                *string
	)
	err := row.Scan(&o.ID, &o.UserID, &subtotal, &discount, &total, &couponCode, &o.CreatedAt)
	o.Subtotal = money.FromDecimal(subtotal)
	o.DiscountAmount = money.FromDecimal(discount)
	o.TotalFinal = money.FromDecimal(total)
	if couponCode != nil {
		o.CouponCode = *couponCode
	}
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		it                   order.Item
		unitPrice, lineTotal decimal.Decimal
	)
	err := row.Scan(&it.ID, &it.ProductID, &it.Quantity, &unitPrice, &lineTotal)
	it.UnitPrice = money.FromDecimal(unitPrice)
	it.LineTotal = money.FromDecimal(lineTotal)
	return it, err
}

func nullableCode(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}
