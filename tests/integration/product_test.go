//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
)

func TestListProducts_Seeded(t *testing.T) {
	resp := doGet(t, "/api/products?page_size=100")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if list.Meta.Total < 10 {
		t.Fatalf("expected at least 10 seeded products, got %d", list.Meta.Total)
	}
	for _, p := range list.Items {
		if p.Price == "" {
			t.Errorf("product %d has empty price", p.ID)
		}
		if p.Stock < 0 {
			t.Errorf("product %d has negative stock %d", p.ID, p.Stock)
		}
	}
}

func TestListProducts_SortByPriceDesc(t *testing.T) {
	resp := doGet(t, "/api/products?sort=price&order=desc&page_size=100")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if list.Meta.Sort != "price" || list.Meta.Order != "desc" {
		t.Fatalf("meta sort/order = %s/%s", list.Meta.Sort, list.Meta.Order)
	}
	for i := 1; i < len(list.Items); i++ {
		prev, err := strconv.ParseFloat(list.Items[i-1].Price, 64)
		if err != nil {
			t.Fatalf("bad price %q: %v", list.Items[i-1].Price, err)
		}
		curr, err := strconv.ParseFloat(list.Items[i].Price, 64)
		if err != nil {
			t.Fatalf("bad price %q: %v", list.Items[i].Price, err)
		}
		if prev < curr {
			t.Errorf("prices not descending at %d: %s < %s", i, list.Items[i-1].Price, list.Items[i].Price)
		}
	}
}

func TestListProducts_Search(t *testing.T) {
	resp := doGet(t, "/api/products?search=caderno&page_size=100")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if len(list.Items) == 0 {
		t.Fatal("expected search to match seeded notebooks")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != "product_not_found" {
		t.Errorf("error code = %q, want product_not_found", errResp.Code)
	}
}

func TestProductCRUD(t *testing.T) {
	token := registerUser(t, "catalogo@escola.br")

	// Create.
	createResp := do(t, http.MethodPost, "/api/products", map[string]any{
		"name":        "Estojo Duplo",
		"description": "Estojo com dois compartimentos.",
		"price":       "24.90",
		"stock":       15,
		"category":    "acessorios",
		"sku":         "EST-DUP-01",
	}, token)
	defer createResp.Body.Close()

	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", createResp.StatusCode)
	}
	created := decodeJSON[productResponse](t, createResp)
	if created.ID == 0 || created.Price != "24.90" {
		t.Fatalf("created product: %+v", created)
	}

	// Duplicate SKU conflicts.
	dupResp := do(t, http.MethodPost, "/api/products", map[string]any{
		"name":  "Outro Estojo",
		"price": "19.90",
		"stock": 5,
		"sku":   "EST-DUP-01",
	}, token)
	defer dupResp.Body.Close()
	if dupResp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate sku: expected 409, got %d", dupResp.StatusCode)
	}

	// Update.
	updateResp := do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", created.ID), map[string]any{
		"name":        "Estojo Duplo",
		"description": "Estojo com dois compartimentos.",
		"price":       "22.00",
		"stock":       12,
		"category":    "acessorios",
		"sku":         "EST-DUP-01",
	}, token)
	defer updateResp.Body.Close()
	if updateResp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", updateResp.StatusCode)
	}

	getResp := doGet(t, fmt.Sprintf("/api/products/%d", created.ID))
	defer getResp.Body.Close()
	got := decodeJSON[productResponse](t, getResp)
	if got.Price != "22.00" || got.Stock != 12 {
		t.Fatalf("after update: price=%s stock=%d", got.Price, got.Stock)
	}

	// Delete.
	delResp := do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", created.ID), nil, token)
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", delResp.StatusCode)
	}

	goneResp := doGet(t, fmt.Sprintf("/api/products/%d", created.ID))
	defer goneResp.Body.Close()
	if goneResp.StatusCode != http.StatusNotFound {
		t.Fatalf("after delete: expected 404, got %d", goneResp.StatusCode)
	}
}

func TestProductWrite_RequiresAuth(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name": "Sem Login", "price": "1.00", "stock": 1,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
