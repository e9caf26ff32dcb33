package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/superscan/internal/domain"
)

// MemoryStore implements Store without a database. Data lives as long as
// the process.
type MemoryStore struct {
	mu           sync.RWMutex
	currency     string
	products     map[string]domain.Product
	productOrder []string
	transactions []domain.Transaction
	txIndex      map[string]struct{}
	templates    []domain.ReceiptTemplate
	outbox       []*OutboxEvent
	processed    map[int64]time.Time
}

func NewMemoryStore(currency string) *MemoryStore {
	return &MemoryStore{
		currency:  currency,
		products:  make(map[string]domain.Product),
		txIndex:   make(map[string]struct{}),
		processed: make(map[int64]time.Time),
	}
}

func (s *MemoryStore) LoadProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryStore) SaveProducts(_ context.Context, products ...domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.productOrder = append(s.productOrder, p.ID)
		}
		s.products[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	for i, pid := range s.productOrder {
		if pid == id {
			s.productOrder = append(s.productOrder[:i], s.productOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) LoadTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *MemoryStore) RecordCheckout(_ context.Context, t domain.Transaction, stock []domain.Product) error {
	payload, err := newTransactionCompleted(t, s.currency)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate
	if _, exists := s.txIndex[t.ID]; exists {
		return ErrDuplicateTransaction
	}

	// Second pass: apply
	for _, p := range stock {
		if current, ok := s.products[p.ID]; ok {
			current.Quantity = p.Quantity
			s.products[p.ID] = current
		}
	}
	s.txIndex[t.ID] = struct{}{}
	s.transactions = append(s.transactions, t.Clone())
	s.outbox = append(s.outbox, &OutboxEvent{
		ID:          int64(len(s.outbox) + 1),
		AggregateID: t.ID,
		EventType:   EventTransactionCompleted,
		Payload:     payload,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *MemoryStore) LoadTemplates(_ context.Context) ([]domain.ReceiptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ReceiptTemplate, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

func (s *MemoryStore) SaveTemplates(_ context.Context, templates ...domain.ReceiptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range templates {
		replaced := false
		for i := range s.templates {
			if s.templates[i].ID == t.ID {
				s.templates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			s.templates = append(s.templates, t)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return ErrTemplateNotFound
}

func (s *MemoryStore) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*OutboxEvent
	for _, e := range s.outbox {
		if len(events) >= limit {
			break
		}
		if _, done := s.processed[e.ID]; done {
			continue
		}
		copied := *e
		events = append(events, &copied)
	}
	return events, nil
}

func (s *MemoryStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[id] = time.Now()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
