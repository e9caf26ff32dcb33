package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/superscan/internal/cart"
	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error)
	AddToCart(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error)
	AddIdentified(ctx context.Context, sessionID string, productIDs []string) (domain.CartSnapshot, cart.BatchResult, error)
	SetQuantity(ctx context.Context, sessionID, productID string, n int) (domain.CartSnapshot, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error)
	ClearCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error)
}

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type AddIdentifiedRequestDTO struct {
	ProductIDs []string `json:"product_ids"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartLineDTO struct {
	domain.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	SessionID string          `json:"session_id"`
	Lines     []CartLineDTO   `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Warning   *ErrorResponse  `json:"warning,omitempty"`
}

type IdentifiedResponse struct {
	CartResponse
	Added    []string `json:"added"`
	Failures int      `json:"failures"`
}

func toCartResponse(s domain.CartSnapshot) CartResponse {
	lines := make([]CartLineDTO, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, CartLineDTO{CartLine: l, Subtotal: l.Subtotal()})
	}
	return CartResponse{SessionID: s.SessionID, Lines: lines, Total: s.Total()}
}

// GET /api/v1/carts/{session}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(c))
}

// POST /api/v1/carts/{session}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	c, err := h.carts.AddToCart(r.Context(), chi.URLParam(r, "session"), req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartResponse(c))
}

// POST /api/v1/carts/{session}/identified
// Per-item failures do not fail the request; the first one is returned as
// a warning.
func (h *CartHandler) AddIdentified(w http.ResponseWriter, r *http.Request) {
	var req AddIdentifiedRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, res, err := h.carts.AddIdentified(r.Context(), chi.URLParam(r, "session"), req.ProductIDs)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := IdentifiedResponse{
		CartResponse: toCartResponse(c),
		Added:        res.Added,
		Failures:     res.Failures,
	}
	if resp.Added == nil {
		resp.Added = []string{}
	}
	resp.Warning = warning(res.Err)
	respondJSON(w, http.StatusOK, resp)
}

// PUT /api/v1/carts/{session}/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), chi.URLParam(r, "session"), chi.URLParam(r, "product_id"), *req.Quantity)
	var clamped *catalog.InsufficientStockError
	if err != nil && !errors.As(err, &clamped) {
		handleError(w, r, err)
		return
	}

	// a clamp still takes effect and is reported with the cart
	resp := toCartResponse(c)
	resp.Warning = warning(err)
	respondJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/carts/{session}/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveFromCart(r.Context(), chi.URLParam(r, "session"), chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(c))
}

// DELETE /api/v1/carts/{session}
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.ClearCart(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(c))
}
