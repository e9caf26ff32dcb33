package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Service is everything the HTTP surface needs from the point of sale.
type Service interface {
	ProductService
	CartService
	CheckoutService
	TemplateService
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	ServiceName        string
}

func NewRouter(svc Service, cfg RouterConfig) http.Handler {
	products := NewProductHandler(svc)
	carts := NewCartHandler(svc)
	checkout := NewCheckoutHandler(svc)
	templates := NewTemplateHandler(svc)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodyMiddleware(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Post("/batch", products.CreateBatch)
			r.Get("/{id}", products.Get)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
		})
		r.Route("/carts/{session}", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Post("/identified", carts.AddIdentified)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
			r.Post("/checkout", checkout.Checkout)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", checkout.ListTransactions)
			r.Get("/{id}", checkout.GetTransaction)
		})
		r.Route("/receipt-templates", func(r chi.Router) {
			r.Get("/", templates.List)
			r.Post("/", templates.Create)
			r.Get("/{id}", templates.Get)
			r.Put("/{id}", templates.Update)
			r.Delete("/{id}", templates.Delete)
		})
	})

	name := cfg.ServiceName
	if name == "" {
		name = "superscan"
	}
	return otelhttp.NewHandler(r, name)
}
