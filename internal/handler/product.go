package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusvc/loja-escolar/internal/domain/money"
	"github.com/mateusvc/loja-escolar/internal/domain/product"
)

type productResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       money.Money `json:"price"`
	Stock       int         `json:"stock"`
	Category    string      `json:"category"`
	SKU         *string     `json:"sku,omitempty"`
	ImageURL    *string     `json:"image_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type listMeta struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Search   string `json:"search,omitempty"`
}

type productListResponse struct {
	Items []productResponse `json:"items"`
	Meta  listMeta          `json:"meta"`
}

func parseListQuery(r *http.Request) product.Query {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	return product.Query{
		Search:     strings.TrimSpace(q.Get("search")),
		Sort:       product.SortField(q.Get("sort")),
		Descending: q.Get("order") == "desc",
		Page:       page,
		PageSize:   pageSize,
	}.Normalize()
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	items, total, err := h.products.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	order := "asc"
	if q.Descending {
		order = "desc"
	}
	resp := productListResponse{
		Items: make([]productResponse, 0, len(items)),
		Meta: listMeta{
			Total:    total,
			Page:     q.Page,
			PageSize: q.PageSize,
			Sort:     string(q.Sort),
			Order:    order,
			Search:   q.Search,
		},
	}
	for i := range items {
		resp.Items = append(resp.Items, toProductResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	return id, err == nil && id > 0
}

// GetProduct handles GET /products/{productID}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	SKU         *string `json:"sku"`
	ImageURL    *string `json:"image_url"`
}

func (req *productRequest) validate() (money.Money, string, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return money.Money{}, "invalid_name", "name is required"
	}
	price, err := money.FromString(req.Price)
	if err != nil {
		return money.Money{}, "invalid_price", "price must be a decimal string like \"15.90\""
	}
	if !price.Quantize().Equal(price) || price.Sub(money.MustFromString("0.01")).IsNegative() {
		return money.Money{}, "invalid_price", "price must be at least 0.01 with at most two decimal places"
	}
	if req.Stock < 0 {
		return money.Money{}, "invalid_stock", "stock must not be negative"
	}
	return price, "", ""
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	price, code, msg := req.validate()
	if code != "" {
		writeErrorMsg(w, http.StatusBadRequest, code, msg)
		return
	}

	p := &product.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// UpdateProduct handles PUT /products/{productID}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	price, code, msg := req.validate()
	if code != "" {
		writeErrorMsg(w, http.StatusBadRequest, code, msg)
		return
	}

	p := &product.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		Category:    req.Category,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProduct handles DELETE /products/{productID}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		writeErrorMsg(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
