package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ProductService interface {
	ListProducts(ctx context.Context) []domain.Product
	SearchProducts(ctx context.Context, query string) []domain.Product
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	AddProducts(ctx context.Context, attrs ...domain.ProductAttrs) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, attrs domain.ProductAttrs) (domain.Product, error)
	RemoveProduct(ctx context.Context, id string) error
}

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// looseString accepts a JSON string or number. Anything else decodes to "",
// which the catalog coerces to zero.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*s = ""
		return nil
	}
	*s = looseString(n.String())
	return nil
}

type ProductRequestDTO struct {
	Name     string      `json:"name"`
	Price    looseString `json:"price"`
	Quantity looseString `json:"quantity"`
	Image    string      `json:"image"`
}

func (d ProductRequestDTO) attrs() domain.ProductAttrs {
	return domain.ProductAttrs{
		Name:     strings.TrimSpace(d.Name),
		Price:    string(d.Price),
		Quantity: string(d.Quantity),
		Image:    d.Image,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// GET /api/v1/products?q=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []domain.Product
	if q, ok := r.URL.Query()["q"]; ok {
		products = h.products.SearchProducts(r.Context(), q[0])
	} else {
		products = h.products.ListProducts(r.Context())
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}

	added, err := h.products.AddProducts(r.Context(), req.attrs())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, added[0])
}

// POST /api/v1/products/batch
func (h *ProductHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Products []ProductRequestDTO `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Products) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "products must not be empty")
		return
	}

	attrs := make([]domain.ProductAttrs, 0, len(req.Products))
	for _, p := range req.Products {
		if strings.TrimSpace(p.Name) == "" {
			respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
			return
		}
		attrs = append(attrs, p.attrs())
	}

	added, err := h.products.AddProducts(r.Context(), attrs...)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, &ProductsResponse{Products: added})
}

// PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.attrs())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
