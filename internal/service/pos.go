package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/superscan/internal/cache"
	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/checkout"
	"github.com/fjod/go_cart/superscan/internal/ledger"
	"github.com/fjod/go_cart/superscan/internal/receipt"
	"github.com/fjod/go_cart/superscan/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fjod/go_cart/superscan/internal/service"

// POS is the reconciliation context of one store. Every operation that
// touches the catalog, a cart, the ledger or the templates runs under mu,
// so each completes before the next starts.
type POS struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	templates *receipt.Store
	engine    *checkout.Engine
	store     repository.Store
	carts     *cartSessions
	log       *zap.Logger
	tracer    trace.Tracer
}

type Option func(*posOptions)

type posOptions struct {
	cartRepo  repository.CartRepository
	cartCache cache.CartCache
	engine    []checkout.Option
}

// WithCartRepository persists open carts so a register survives a restart.
func WithCartRepository(repo repository.CartRepository) Option {
	return func(o *posOptions) { o.cartRepo = repo }
}

func WithCartCache(c cache.CartCache) Option {
	return func(o *posOptions) { o.cartCache = c }
}

func WithEngineOptions(opts ...checkout.Option) Option {
	return func(o *posOptions) { o.engine = append(o.engine, opts...) }
}

func NewPOS(store repository.Store, log *zap.Logger, opts ...Option) *POS {
	var o posOptions
	for _, opt := range opts {
		opt(&o)
	}

	cat := catalog.New()
	l := ledger.New()
	engineOpts := append([]checkout.Option{checkout.WithJournal(store)}, o.engine...)

	return &POS{
		catalog:   cat,
		ledger:    l,
		templates: receipt.NewStore(),
		engine:    checkout.NewEngine(cat, l, engineOpts...),
		store:     store,
		carts:     newCartSessions(cat, o.cartRepo, o.cartCache, log),
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}
}

// Load rehydrates the catalog, the ledger and the receipt templates from
// the store. A store without templates is seeded with the default one.
func (p *POS) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	products, err := p.store.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	txs, err := p.store.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	templates, err := p.store.LoadTemplates(ctx)
	if err != nil {
		return fmt.Errorf("load receipt templates: %w", err)
	}

	p.catalog.Restore(products)
	p.ledger.Restore(txs)
	if seeded := p.templates.Restore(templates); seeded {
		if err := p.store.SaveTemplates(ctx, p.templates.List()...); err != nil {
			return fmt.Errorf("seed receipt templates: %w", err)
		}
	}

	p.log.Info("pos state loaded",
		zap.Int("products", len(products)),
		zap.Int("transactions", len(txs)),
		zap.Int("templates", len(p.templates.List())))
	return nil
}

func (p *POS) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "POS."+name)
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
