package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/fjod/go_cart/superscan/internal/repository"
	"github.com/fjod/go_cart/superscan/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore("NGN")
	require.NoError(t, store.SaveProducts(ctx,
		domain.Product{ID: "pen", Name: "Pen", Price: decimal.NewFromInt(100), Quantity: 2},
		domain.Product{ID: "ink", Name: "Ink", Price: decimal.RequireFromString("2.50"), Quantity: 10},
		domain.Product{ID: "cap", Name: "Cap", Price: decimal.NewFromInt(5), Quantity: 0},
	))
	pos := service.NewPOS(store, zap.NewNop())
	require.NoError(t, pos.Load(ctx))
	return NewRouter(pos, RouterConfig{MaxRequestBodySize: 1 << 20})
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestProducts_CreateAcceptsNumbersAndStrings(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Stapler", "price": 12.5, "quantity": "3",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decode[domain.Product](t, rr)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))
	assert.Equal(t, 3, p.Quantity)

	rr = do(t, h, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Glue", "price": "abc", "quantity": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p = decode[domain.Product](t, rr)
	assert.True(t, p.Price.IsZero())
	assert.Equal(t, 0, p.Quantity)
}

func TestProducts_CreateRequiresName(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodPost, "/api/v1/products", map[string]interface{}{"price": 1})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_name", decode[ErrorResponse](t, rr).Code)
}

func TestProducts_ListSearchAndDelete(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[ProductsResponse](t, rr).Products, 3)

	rr = do(t, h, http.MethodGet, "/api/v1/products?q=IN", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decode[ProductsResponse](t, rr).Products
	require.Len(t, found, 1)
	assert.Equal(t, "ink", found[0].ID)

	rr = do(t, h, http.MethodDelete, "/api/v1/products/ink", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/products/ink", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProducts_Batch(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodPost, "/api/v1/products/batch", map[string]interface{}{
		"products": []map[string]interface{}{
			{"name": "A", "price": 1, "quantity": 1},
			{"name": "B", "price": "2", "quantity": 2},
		},
	})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, decode[ProductsResponse](t, rr).Products, 2)
}

func TestCart_AddAndCheckout(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "ink"})
	require.Equal(t, http.StatusCreated, rr.Code)
	c := decode[CartResponse](t, rr)
	assert.True(t, decimal.RequireFromString("102.5").Equal(c.Total))

	rr = do(t, h, http.MethodPost, "/api/v1/carts/till-1/checkout", CheckoutRequestDTO{CustomerName: "Ada"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tx := decode[TransactionResponse](t, rr)
	assert.Equal(t, "Ada", tx.Customer.Name)
	assert.Equal(t, domain.NotProvided, tx.Customer.Email)
	assert.Equal(t, 2, tx.ItemCount)
	require.Len(t, tx.Items, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(tx.Items[0].Subtotal))

	rr = do(t, h, http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[TransactionsResponse](t, rr)
	assert.Equal(t, 1, list.Count)
	assert.True(t, decimal.RequireFromString("102.5").Equal(list.Total))

	rr = do(t, h, http.MethodGet, "/api/v1/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/carts/till-1", nil)
	assert.Empty(t, decode[CartResponse](t, rr).Lines)
}

func TestCart_CheckoutWithoutBody(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "ink"})
	require.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/till-1/checkout", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, domain.NotProvided, decode[TransactionResponse](t, rr).Customer.Name)
}

func TestCart_Errors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		status   int
		code     string
		prodName string
	}{
		{"out of stock", http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "cap"}, http.StatusConflict, "out_of_stock", "Cap"},
		{"unknown product", http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "nope"}, http.StatusNotFound, "product_not_found", ""},
		{"missing product id", http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{}, http.StatusBadRequest, "invalid_product_id", ""},
		{"empty cart checkout", http.MethodPost, "/api/v1/carts/till-1/checkout", CheckoutRequestDTO{}, http.StatusBadRequest, "empty_cart", ""},
		{"unknown transaction", http.MethodGet, "/api/v1/transactions/nope", nil, http.StatusNotFound, "transaction_not_found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, rr.Code)
			body := decode[ErrorResponse](t, rr)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.prodName, body.ProductName)
		})
	}
}

func TestCart_StockExhausted(t *testing.T) {
	h := newTestRouter(t)
	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})

	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decode[ErrorResponse](t, rr)
	assert.Equal(t, "stock_exhausted", body.Code)
	assert.Equal(t, "no more Pen in stock", body.Error)
}

func TestCart_CheckoutFailsWhenAnotherRegisterSold(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})
	do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})
	do(t, h, http.MethodPost, "/api/v1/carts/till-2/items", AddItemRequestDTO{ProductID: "pen"})

	rr := do(t, h, http.MethodPost, "/api/v1/carts/till-2/checkout", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/carts/till-1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decode[ErrorResponse](t, rr)
	assert.Equal(t, "checkout_failed", body.Code)
	assert.Equal(t, "Pen", body.ProductName)
}

func TestCart_AddIdentified(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodPost, "/api/v1/carts/till-1/identified", AddIdentifiedRequestDTO{
		ProductIDs: []string{"ink", "cap", "ink"},
	})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[IdentifiedResponse](t, rr)
	assert.Equal(t, []string{"ink", "ink"}, resp.Added)
	assert.Equal(t, 1, resp.Failures)
	require.NotNil(t, resp.Warning)
	assert.Equal(t, "out_of_stock", resp.Warning.Code)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
}

func TestCart_UpdateQuantityClamps(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "ink"})

	qty := 50
	rr := do(t, h, http.MethodPut, "/api/v1/carts/till-1/items/ink", UpdateQuantityRequestDTO{Quantity: &qty})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[CartResponse](t, rr)
	require.NotNil(t, resp.Warning)
	assert.Equal(t, "insufficient_stock", resp.Warning.Code)
	assert.Equal(t, 10, resp.Lines[0].Quantity)

	rr = do(t, h, http.MethodPut, "/api/v1/carts/till-1/items/ink", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCart_RemoveAndClear(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "ink"})
	do(t, h, http.MethodPost, "/api/v1/carts/till-1/items", AddItemRequestDTO{ProductID: "pen"})

	rr := do(t, h, http.MethodDelete, "/api/v1/carts/till-1/items/ink", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[CartResponse](t, rr).Lines, 1)

	rr = do(t, h, http.MethodDelete, "/api/v1/carts/till-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[CartResponse](t, rr).Lines)
}

func TestTemplates(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/api/v1/receipt-templates", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[TemplatesResponse](t, rr).Templates, 1)

	for i := 0; i < 3; i++ {
		rr = do(t, h, http.MethodPost, "/api/v1/receipt-templates", nil)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr = do(t, h, http.MethodPost, "/api/v1/receipt-templates", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "template_limit", decode[ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodGet, "/api/v1/receipt-templates", nil)
	first := decode[TemplatesResponse](t, rr).Templates[0]
	first.FooterText = "See you soon"
	rr = do(t, h, http.MethodPut, "/api/v1/receipt-templates/"+first.ID, first)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "See you soon", decode[domain.ReceiptTemplate](t, rr).FooterText)

	rr = do(t, h, http.MethodDelete, "/api/v1/receipt-templates/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/receipt-templates/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
