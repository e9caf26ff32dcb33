package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/superscan/internal/cart"
	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/checkout"
	"github.com/fjod/go_cart/superscan/internal/ledger"
	"github.com/fjod/go_cart/superscan/internal/receipt"
	"github.com/fjod/go_cart/superscan/pkg/circuitbreaker"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	Details     string `json:"details,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// describeError maps a service error to its HTTP status and body.
func describeError(err error) (int, ErrorResponse) {
	var (
		failed       *checkout.CheckoutFailedError
		itemErr      *cart.ItemError
		insufficient *catalog.InsufficientStockError
	)

	switch {
	case errors.As(err, &failed):
		return http.StatusConflict, ErrorResponse{Error: failed.Error(), Code: "checkout_failed", ProductName: failed.ProductName}
	case errors.As(err, &itemErr):
		status, code := http.StatusConflict, "out_of_stock"
		switch {
		case errors.Is(itemErr, catalog.ErrProductNotFound):
			status, code = http.StatusNotFound, "product_not_found"
		case errors.Is(itemErr, cart.ErrStockExhausted):
			code = "stock_exhausted"
		}
		return status, ErrorResponse{Error: itemErr.Error(), Code: code, ProductName: itemErr.ProductName}
	case errors.As(err, &insufficient):
		return http.StatusConflict, ErrorResponse{Error: insufficient.Error(), Code: "insufficient_stock", ProductName: insufficient.ProductName}
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "empty_cart"}
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "product_not_found"}
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "transaction_not_found"}
	case errors.Is(err, receipt.ErrTemplateNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "template_not_found"}
	case errors.Is(err, receipt.ErrTemplateLimit):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "template_limit"}
	case errors.Is(err, receipt.ErrLastTemplate):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "last_template"}
	case errors.Is(err, circuitbreaker.ErrOpen):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "storage temporarily unavailable", Code: "service_unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out", Code: "timeout"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal_error"}
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describeError(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", getRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	respondJSON(w, status, body)
}

// warning describes a non-fatal error to return alongside a result.
func warning(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	_, body := describeError(err)
	return &body
}
