package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mateusvc/loja-escolar/internal/auth"
	"github.com/mateusvc/loja-escolar/internal/domain/cart"
	"github.com/mateusvc/loja-escolar/internal/domain/order"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
	"github.com/mateusvc/loja-escolar/internal/domain/user"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeError maps a domain error to an HTTP status and a stable error code.
// Unknown errors are logged and returned as an opaque 500 so internal
// details never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidQty  *order.InvalidQuantityError
		invalidID   *order.InvalidProductIDError
		notFound    *order.ProductNotFoundError
		outOfStock  *order.OutOfStockError
		insuffStock *order.InsufficientStockError
	)
	switch {
	case errors.As(err, &invalidQty):
		writeErrorMsg(w, http.StatusBadRequest, "invalid_quantity", invalidQty.Error())
	case errors.As(err, &invalidID):
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", invalidID.Error())
	case errors.As(err, &notFound):
		writeErrorMsg(w, http.StatusNotFound, "product_not_found", notFound.Error())
	case errors.As(err, &outOfStock):
		writeErrorMsg(w, http.StatusConflict, "out_of_stock", outOfStock.Error())
	case errors.As(err, &insuffStock):
		writeErrorMsg(w, http.StatusConflict, "insufficient_stock", insuffStock.Error())
	case errors.Is(err, order.ErrEmptyItems):
		writeErrorMsg(w, http.StatusBadRequest, "empty_order", "order must contain at least one item")
	case errors.Is(err, order.ErrStorageConflict):
		writeErrorMsg(w, http.StatusConflict, "storage_conflict", "order could not be placed due to concurrent activity, please retry")
	case errors.Is(err, order.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, product.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, product.ErrSKUConflict):
		writeErrorMsg(w, http.StatusConflict, "sku_conflict", "a product with this SKU already exists")
	case errors.Is(err, user.ErrEmailTaken):
		writeErrorMsg(w, http.StatusConflict, "email_taken", "an account with this email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorMsg(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorMsg(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
	case errors.Is(err, cart.ErrEmptyCart):
		writeErrorMsg(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, cart.ErrItemNotFound):
		writeErrorMsg(w, http.StatusNotFound, "cart_item_not_found", "item is not in the cart")
	default:
		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
