package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string, customer domain.Customer) (domain.Transaction, error)
	ListTransactions(ctx context.Context) []domain.Transaction
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
}

func NewCheckoutHandler(checkout CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type CheckoutRequestDTO struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
}

// TransactionResponse is a transaction with everything a receipt prints.
type TransactionResponse struct {
	domain.Transaction
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"item_count"`
}

type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Total        decimal.Decimal       `json:"total"`
}

func toTransactionResponse(tx domain.Transaction) TransactionResponse {
	items := make([]CartLineDTO, 0, len(tx.Items))
	for _, l := range tx.Items {
		items = append(items, CartLineDTO{CartLine: l, Subtotal: l.Subtotal()})
	}
	return TransactionResponse{Transaction: tx, Items: items, ItemCount: tx.ItemCount()}
}

// POST /api/v1/carts/{session}/checkout
// The body is optional; missing customer fields are recorded as not provided.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tx, err := h.checkout.Checkout(r.Context(), chi.URLParam(r, "session"), domain.Customer{
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
		Email: req.CustomerEmail,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// GET /api/v1/transactions
func (h *CheckoutHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.checkout.ListTransactions(r.Context())
	resp := TransactionsResponse{
		Transactions: make([]TransactionResponse, 0, len(txs)),
		Count:        len(txs),
		Total:        sumTotals(txs),
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *CheckoutHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.checkout.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func sumTotals(txs []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.TotalAmount)
	}
	return total
}
