//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestValidateCoupon_Seeded(t *testing.T) {
	resp := doGet(t, "/api/coupons/ALUNO10/validate")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[couponValidateResponse](t, resp)
	if !body.Valid {
		t.Fatalf("ALUNO10 should be valid: %+v", body)
	}
	if body.DiscountPercent != 10 {
		t.Errorf("discount = %d, want 10", body.DiscountPercent)
	}
}

func TestValidateCoupon_CaseInsensitive(t *testing.T) {
	resp := doGet(t, "/api/coupons/aluno10/validate")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[couponValidateResponse](t, resp)
	if !body.Valid || body.Code != "ALUNO10" {
		t.Fatalf("lowercase lookup: %+v", body)
	}
}

func TestValidateCoupon_Unknown(t *testing.T) {
	resp := doGet(t, "/api/coupons/NAOEXISTE/validate")
	defer resp.Body.Close()

	// A bad code is a business verdict, not an HTTP error.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[couponValidateResponse](t, resp)
	if body.Valid {
		t.Fatal("unknown coupon reported valid")
	}
	if body.DiscountPercent != 0 {
		t.Errorf("discount = %d, want 0", body.DiscountPercent)
	}
}
