package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mateusvc/loja-escolar/internal/domain/cart"
	"github.com/mateusvc/loja-escolar/internal/domain/money"
)

type cartItemResponse struct {
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal money.Money     `json:"line_total"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total money.Money        `json:"total"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	resp := cartResponse{
		Items: make([]cartItemResponse, 0, len(c.Items)),
		Total: c.Total,
	}
	for i := range c.Items {
		it := &c.Items[i]
		resp.Items = append(resp.Items, cartItemResponse{
			Product:   toProductResponse(&it.Product),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AddToCart handles POST /cart, merging the quantity into any existing line.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.ProductID <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}
	if req.Quantity <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	c, err := h.carts.Add(r.Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// GetCart handles GET /cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	c, err := h.carts.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem handles PUT /cart/items/{productID} with an absolute
// quantity. Zero or negative removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	pid, ok := productIDParam(r)
	if !ok {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	c, err := h.carts.Update(r.Context(), uid, pid, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// RemoveCartItem handles DELETE /cart/items/{productID}.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	pid, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || pid <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	c, err := h.carts.Remove(r.Context(), uid, pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

type cartCheckoutRequest struct {
	CouponCode string `json:"coupon_code"`
}

// CheckoutCart handles POST /cart/checkout: places an order from the cart
// contents and clears the cart on success.
func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	var req cartCheckoutRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
			return
		}
	}

	o, err := h.carts.Checkout(r.Context(), uid, req.CouponCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}
