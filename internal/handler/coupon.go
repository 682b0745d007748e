package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type couponValidateResponse struct {
	Valid           bool   `json:"valid"`
	DiscountPercent int    `json:"discount_percent"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// ValidateCoupon handles GET /coupons/{code}/validate. It always answers
// 200 with a verdict; a bad code is a business outcome, not an HTTP error.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_code", "coupon code is required")
		return
	}

	res, err := h.coupons.Validate(r.Context(), code, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, couponValidateResponse{
		Valid:           res.Applicable,
		DiscountPercent: res.DiscountPercent,
		Code:            res.Code,
		Message:         res.Reason,
	})
}
