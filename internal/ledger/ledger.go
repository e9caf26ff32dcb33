package ledger

import (
	"errors"
	"sort"
	"sync"

	"github.com/fjod/go_cart/superscan/internal/domain"
)

var (
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

// Ledger is an append-only record of completed sales. Entries are stored in
// insertion order and are never updated or removed.
type Ledger struct {
	mu    sync.RWMutex
	txs   []domain.Transaction
	index map[string]int
}

func New() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// Append records tx once. A second append with the same id is rejected.
func (l *Ledger) Append(tx domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.index[tx.ID]; exists {
		return ErrDuplicateTransaction
	}
	l.index[tx.ID] = len(l.txs)
	l.txs = append(l.txs, tx.Clone())
	return nil
}

// List returns the transactions newest first. Entries with the same date
// keep reverse insertion order.
func (l *Ledger) List() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(l.txs))
	for i := len(l.txs) - 1; i >= 0; i-- {
		out = append(out, l.txs[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// All returns the transactions in insertion order.
func (l *Ledger) All() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		out = append(out, tx.Clone())
	}
	return out
}

func (l *Ledger) Get(id string) (domain.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return domain.Transaction{}, ErrTransactionNotFound
	}
	return l.txs[i].Clone(), nil
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Restore loads previously persisted transactions in their stored order.
// Duplicate ids after the first are skipped.
func (l *Ledger) Restore(txs []domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = make([]domain.Transaction, 0, len(txs))
	l.index = make(map[string]int, len(txs))
	for _, tx := range txs {
		if _, exists := l.index[tx.ID]; exists {
			continue
		}
		l.index[tx.ID] = len(l.txs)
		l.txs = append(l.txs, tx.Clone())
	}
}
