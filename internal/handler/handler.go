// Package handler exposes the HTTP API: auth, catalog, coupon validation,
// order placement, and the session cart. Handlers translate between JSON
// DTOs and domain calls; business rules live in the domain packages.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateusvc/loja-escolar/internal/auth"
	"github.com/mateusvc/loja-escolar/internal/domain/cart"
	"github.com/mateusvc/loja-escolar/internal/domain/coupon"
	"github.com/mateusvc/loja-escolar/internal/domain/order"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
	"github.com/mateusvc/loja-escolar/internal/domain/user"
)

// Handler carries the dependencies of every HTTP endpoint.
type Handler struct {
	users    user.Repository
	tokens   *auth.Tokens
	products product.Repository
	coupons  coupon.Validator
	orders   *order.Service
	history  order.Repository
	carts    *cart.Service
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(
	users user.Repository,
	tokens *auth.Tokens,
	products product.Repository,
	coupons coupon.Validator,
	orders *order.Service,
	history order.Repository,
	carts *cart.Service,
) *Handler {
	return &Handler{
		users:    users,
		tokens:   tokens,
		products: products,
		coupons:  coupons,
		orders:   orders,
		history:  history,
		carts:    carts,
	}
}

// Routes builds the API router. Authentication is applied per route group:
// catalog reads, coupon validation, and checkout are public (checkout
// attaches the user when a valid token is present); catalog writes, order
// history, and the cart require a logged-in user.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Get("/coupons/{code}/validate", h.ValidateCoupon)

	r.With(h.optionalUser).Post("/orders/confirm", h.ConfirmOrder)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{productID}", h.UpdateProduct)
		r.Delete("/products/{productID}", h.DeleteProduct)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderID}", h.GetOrder)

		r.Post("/cart", h.AddToCart)
		r.Get("/cart", h.GetCart)
		r.Put("/cart/items/{productID}", h.UpdateCartItem)
		r.Delete("/cart/items/{productID}", h.RemoveCartItem)
		r.Post("/cart/checkout", h.CheckoutCart)
	})

	return r
}
