package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/google/uuid"
)

// Cart is the part of a cart the engine needs.
type Cart interface {
	Lines() []domain.CartLine
	IsEmpty() bool
	Clear()
}

// Stock validates and applies a set of decrements as one unit.
type Stock interface {
	DecrementAll(requests []catalog.StockRequest, commit func([]domain.Product) error) error
}

type Recorder interface {
	Append(tx domain.Transaction) error
}

// Journal persists a checkout. It runs after validation and before the
// in-memory state changes; an error aborts the checkout.
type Journal interface {
	RecordCheckout(ctx context.Context, tx domain.Transaction, stock []domain.Product) error
}

type Engine struct {
	stock   Stock
	ledger  Recorder
	journal Journal
	now     func() time.Time
	newID   func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func NewEngine(stock Stock, ledger Recorder, opts ...Option) *Engine {
	e := &Engine{
		stock:  stock,
		ledger: ledger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Checkout turns the cart into a recorded sale. Either every line's stock
// is decremented, the transaction is recorded and the cart is cleared, or
// nothing changes.
func (e *Engine) Checkout(ctx context.Context, c Cart, customer domain.Customer) (domain.Transaction, error) {
	if c.IsEmpty() {
		return domain.Transaction{}, ErrEmptyCart
	}

	lines := c.Lines()
	requests := make([]catalog.StockRequest, 0, len(lines))
	for _, l := range lines {
		requests = append(requests, catalog.StockRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	tx := domain.Transaction{
		ID:          e.newID(),
		Date:        e.now().UTC(),
		Items:       lines,
		TotalAmount: domain.SumLines(lines),
		Customer:    customer.Normalize(),
	}

	err := e.stock.DecrementAll(requests, func(updated []domain.Product) error {
		if e.journal != nil {
			if err := e.journal.RecordCheckout(ctx, tx.Clone(), updated); err != nil {
				return fmt.Errorf("failed to record checkout: %w", err)
			}
		}
		return e.ledger.Append(tx)
	})
	if err != nil {
		return domain.Transaction{}, failure(err, lines)
	}

	c.Clear()
	return tx.Clone(), nil
}

func failure(err error, lines []domain.CartLine) error {
	var stockErr *catalog.InsufficientStockError
	if errors.As(err, &stockErr) {
		return &CheckoutFailedError{
			Reason:      stockErr.Error(),
			ProductID:   stockErr.ProductID,
			ProductName: stockErr.ProductName,
			Err:         err,
		}
	}

	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		name := notFound.ProductID
		for _, l := range lines {
			if l.ProductID == notFound.ProductID {
				name = l.Name
				break
			}
		}
		return &CheckoutFailedError{
			Reason:      fmt.Sprintf("%s is no longer in the catalog", name),
			ProductID:   notFound.ProductID,
			ProductName: name,
			Err:         err,
		}
	}

	return err
}
