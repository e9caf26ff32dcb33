package service

import (
	"context"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/fjod/go_cart/superscan/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Checkout records the session's cart as a sale. On any error nothing has
// changed.
func (p *POS) Checkout(ctx context.Context, sessionID string, customer domain.Customer) (domain.Transaction, error) {
	ctx, span := p.startSpan(ctx, "Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		recordError(span, err)
		return domain.Transaction{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.engine.Checkout(ctx, c, customer)
	if err != nil {
		recordError(span, err)
		logger.WithTrace(ctx, p.log).Warn("checkout rejected",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return domain.Transaction{}, err
	}
	p.carts.drop(ctx, sessionID)

	span.SetAttributes(
		attribute.String("transaction.id", tx.ID),
		attribute.String("transaction.total", tx.TotalAmount.String()))
	logger.WithTrace(ctx, p.log).Info("checkout completed",
		zap.String("session_id", sessionID),
		zap.String("transaction_id", tx.ID),
		zap.Int("items", tx.ItemCount()),
		zap.String("total", tx.TotalAmount.String()))
	return tx, nil
}

// ListTransactions returns recorded sales newest first.
func (p *POS) ListTransactions(_ context.Context) []domain.Transaction {
	return p.ledger.List()
}

func (p *POS) GetTransaction(_ context.Context, id string) (domain.Transaction, error) {
	return p.ledger.Get(id)
}
