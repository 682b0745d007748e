package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/order"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

// --- Mock implementations ---

type memCartRepo struct {
	carts   map[int64]map[int64]int
	getErr  error
	cleared []int64
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[int64]map[int64]int)}
}

func (r *memCartRepo) Get(_ context.Context, userID int64) (map[int64]int, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make(map[int64]int, len(r.carts[userID]))
	for k, v := range r.carts[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *memCartRepo) SetQuantity(_ context.Context, userID, productID int64, qty int) error {
	if r.carts[userID] == nil {
		r.carts[userID] = make(map[int64]int)
	}
	r.carts[userID][productID] = qty
	return nil
}

func (r *memCartRepo) Remove(_ context.Context, userID, productID int64) error {
	delete(r.carts[userID], productID)
	return nil
}

func (r *memCartRepo) Clear(_ context.Context, userID int64) error {
	delete(r.carts, userID)
	r.cleared = append(r.cleared, userID)
	return nil
}

type mockProductRepo struct {
	byID map[int64]product.Product
}

func (m *mockProductRepo) List(context.Context, product.Query) ([]product.Product, int, error) {
	return nil, 0, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) Create(context.Context, *product.Product) error { return nil }
func (m *mockProductRepo) Update(context.Context, *product.Product) error { return nil }
func (m *mockProductRepo) Delete(context.Context, int64) error            { return nil }

type mockOrders struct {
	lastReq order.PlaceOrderRequest
	result  *order.Order
	err     error
}

func (m *mockOrders) PlaceOrder(_ context.Context, req order.PlaceOrderRequest) (*order.Order, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// --- Helpers ---

func catalog() *mockProductRepo {
	return &mockProductRepo{byID: map[int64]product.Product{
		1: {ID: 1, Name: "Caderno", Price: money.MustFromString("15.90"), Stock: 50},
		2: {ID: 2, Name: "Lápis", Price: money.MustFromString("1.25"), Stock: 100},
	}}
}

// --- Tests ---

func TestCart_AddMergesQuantities(t *testing.T) {
	repo := newMemCartRepo()
	svc := NewService(repo, catalog(), &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	c, err := svc.Add(context.Background(), 7, 1, 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, "79.50", c.Items[0].LineTotal.String())
	assert.Equal(t, "79.50", c.Total.String())
}

func TestCart_AddUnknownProduct(t *testing.T) {
	svc := NewService(newMemCartRepo(), catalog(), &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 999, 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCart_LiveTotalsAcrossProducts(t *testing.T) {
	repo := newMemCartRepo()
	svc := NewService(repo, catalog(), &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	c, err := svc.Add(context.Background(), 7, 2, 4)
	require.NoError(t, err)

	// 15.90*2 + 1.25*4 = 31.80 + 5.00
	assert.Equal(t, "36.80", c.Total.String())
	require.Len(t, c.Items, 2)
	// Items come back sorted by product id.
	assert.Equal(t, int64(1), c.Items[0].Product.ID)
	assert.Equal(t, int64(2), c.Items[1].Product.ID)
}

func TestCart_UpdateSetsAbsoluteQuantity(t *testing.T) {
	repo := newMemCartRepo()
	svc := NewService(repo, catalog(), &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	c, err := svc.Update(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestCart_UpdateToZeroRemoves(t *testing.T) {
	repo := newMemCartRepo()
	svc := NewService(repo, catalog(), &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 1, 5)
	require.NoError(t, err)

	c, err := svc.Update(context.Background(), 7, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCart_UpdateMissingItem(t *testing.T) {
	svc := NewService(newMemCartRepo(), catalog(), &mockOrders{})

	_, err := svc.Update(context.Background(), 7, 1, 2)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestCart_RemoveMissingItem(t *testing.T) {
	svc := NewService(newMemCartRepo(), catalog(), &mockOrders{})

	_, err := svc.Remove(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestCart_GetDropsDeletedProducts(t *testing.T) {
	repo := newMemCartRepo()
	products := catalog()
	svc := NewService(repo, products, &mockOrders{})

	_, err := svc.Add(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 7, 2, 1)
	require.NoError(t, err)

	delete(products.byID, 2)

	c, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(1), c.Items[0].Product.ID)
}

func TestCart_CheckoutEmpty(t *testing.T) {
	svc := NewService(newMemCartRepo(), catalog(), &mockOrders{})

	_, err := svc.Checkout(context.Background(), 7, "")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCart_CheckoutDelegatesAndClears(t *testing.T) {
	repo := newMemCartRepo()
	orders := &mockOrders{result: &order.Order{ID: 10}}
	svc := NewService(repo, catalog(), orders)

	_, err := svc.Add(context.Background(), 7, 2, 4)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	o, err := svc.Checkout(context.Background(), 7, "ALUNO10")
	require.NoError(t, err)
	assert.Equal(t, int64(10), o.ID)

	// Lines arrive sorted by product id with the user attached.
	require.NotNil(t, orders.lastReq.UserID)
	assert.Equal(t, int64(7), *orders.lastReq.UserID)
	assert.Equal(t, "ALUNO10", orders.lastReq.CouponCode)
	require.Len(t, orders.lastReq.Lines, 2)
	assert.Equal(t, order.Line{ProductID: 1, Quantity: 2}, orders.lastReq.Lines[0])
	assert.Equal(t, order.Line{ProductID: 2, Quantity: 4}, orders.lastReq.Lines[1])

	assert.Equal(t, []int64{7}, repo.cleared)
	assert.Empty(t, repo.carts[7])
}

func TestCart_CheckoutFailureKeepsCart(t *testing.T) {
	repo := newMemCartRepo()
	orders := &mockOrders{err: &order.OutOfStockError{ProductID: 1, Name: "Caderno"}}
	svc := NewService(repo, catalog(), orders)

	_, err := svc.Add(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), 7, "")
	var oosErr *order.OutOfStockError
	require.ErrorAs(t, err, &oosErr)

	assert.Empty(t, repo.cleared, "cart survives a failed checkout")
	assert.Equal(t, 2, repo.carts[7][1])
}

func TestCart_RepoFailurePropagates(t *testing.T) {
	repo := newMemCartRepo()
	repo.getErr = errors.New("redis: connection refused")
	svc := NewService(repo, catalog(), &mockOrders{})

	_, err := svc.Get(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart")
}
