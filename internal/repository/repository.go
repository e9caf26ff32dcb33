package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound         = errors.New("cart not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrTemplateNotFound     = errors.New("receipt template not found")
	ErrDuplicateTransaction = errors.New("transaction already recorded")
)

const EventTransactionCompleted = "TransactionCompleted"

// Store persists the catalog, the ledger and receipt templates.
// Consumers define narrower interfaces where they need less.
type Store interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products ...domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	LoadTransactions(ctx context.Context) ([]domain.Transaction, error)
	// RecordCheckout stores the new stock levels, the transaction and its
	// outbox event together.
	RecordCheckout(ctx context.Context, tx domain.Transaction, stock []domain.Product) error

	LoadTemplates(ctx context.Context) ([]domain.ReceiptTemplate, error)
	SaveTemplates(ctx context.Context, templates ...domain.ReceiptTemplate) error
	DeleteTemplate(ctx context.Context, id string) error

	OutboxRepository
	Close() error
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// CartRepository persists open carts per register session.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	UpsertCart(ctx context.Context, cart *domain.CartSnapshot) error
	DeleteCart(ctx context.Context, sessionID string) error
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// TransactionCompleted is the outbox payload for a recorded sale.
type TransactionCompleted struct {
	TransactionID string            `json:"transaction_id"`
	Date          time.Time         `json:"date"`
	Items         []domain.CartLine `json:"items"`
	ItemCount     int               `json:"item_count"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Currency      string            `json:"currency"`
	Customer      domain.Customer   `json:"customer"`
}

func newTransactionCompleted(tx domain.Transaction, currency string) ([]byte, error) {
	return json.Marshal(TransactionCompleted{
		TransactionID: tx.ID,
		Date:          tx.Date,
		Items:         tx.Items,
		ItemCount:     tx.ItemCount(),
		TotalAmount:   tx.TotalAmount,
		Currency:      currency,
		Customer:      tx.Customer,
	})
}
