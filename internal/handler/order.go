package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/order"
)

type orderLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type confirmOrderRequest struct {
	Items      []orderLineRequest `json:"items"`
	CouponCode string             `json:"coupon_code"`
}

type orderItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice money.Money      `json:"unit_price"`
	LineTotal money.Money      `json:"line_total"`
	Product   *productResponse `json:"product,omitempty"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	UserID         *int64              `json:"user_id,omitempty"`
	Subtotal       money.Money         `json:"subtotal"`
	DiscountAmount money.Money         `json:"discount_amount"`
	TotalFinal     money.Money         `json:"total_final"`
	CouponCode     string              `json:"coupon_code,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderItemResponse `json:"items"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TotalFinal:     o.TotalFinal,
		CouponCode:     o.CouponCode,
		CreatedAt:      o.CreatedAt,
		Items:          make([]orderItemResponse, 0, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		item := orderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
		// The snapshot is only populated on a fresh placement, not when an
		// order is re-read from history.
		if it.Product.ID != 0 {
			snap := toProductResponse(&it.Product)
			item.Product = &snap
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

// ConfirmOrder handles POST /orders/confirm. Anonymous checkouts are
// allowed; a valid bearer token attaches the order to the account.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	var req confirmOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	placeReq := order.PlaceOrderRequest{
		CouponCode: req.CouponCode,
		Lines:      make([]order.Line, 0, len(req.Items)),
	}
	if id, ok := userID(r.Context()); ok {
		placeReq.UserID = &id
	}
	for _, it := range req.Items {
		placeReq.Lines = append(placeReq.Lines, order.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.orders.PlaceOrder(r.Context(), placeReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

type orderListResponse struct {
	Items []orderResponse `json:"items"`
}

// ListOrders handles GET /orders, returning the caller's order history.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	orders, err := h.history.ListByUser(r.Context(), uid, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := orderListResponse{Items: make([]orderResponse, 0, len(orders))}
	for i := range orders {
		resp.Items = append(resp.Items, toOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder handles GET /orders/{orderID}. Only the order's owner may read
// it; a foreign order answers 404 so ids cannot be probed.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	uid, _ := userID(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_order_id", "order id must be a positive integer")
		return
	}

	o, err := h.history.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if o.UserID == nil || *o.UserID != uid {
		writeError(w, r, order.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
