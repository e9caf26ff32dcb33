package service

import (
	"context"
	"time"

	"github.com/fjod/go_cart/superscan/internal/cart"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/fjod/go_cart/superscan/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func view(sessionID string, c *cart.Cart) domain.CartSnapshot {
	return domain.CartSnapshot{
		SessionID: sessionID,
		Lines:     c.Lines(),
		UpdatedAt: time.Now().UTC(),
	}
}

func (p *POS) GetCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return view(sessionID, c), nil
}

// AddToCart adds one unit. On a stock or lookup error the cart is unchanged
// and its current state is returned with the error.
func (p *POS) AddToCart(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error) {
	ctx, span := p.startSpan(ctx, "AddToCart")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.String("product.id", productID))

	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		recordError(span, err)
		return domain.CartSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := c.AddOne(productID); err != nil {
		recordError(span, err)
		return view(sessionID, c), err
	}
	p.carts.save(ctx, sessionID, c)
	return view(sessionID, c), nil
}

// AddIdentified adds one unit per id, in order, as returned by product
// recognition. The returned error is only set when the cart could not be
// loaded; per-item failures are in the BatchResult.
func (p *POS) AddIdentified(ctx context.Context, sessionID string, productIDs []string) (domain.CartSnapshot, cart.BatchResult, error) {
	ctx, span := p.startSpan(ctx, "AddIdentified")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.Int("products.count", len(productIDs)))

	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		recordError(span, err)
		return domain.CartSnapshot{}, cart.BatchResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	res := c.AddMany(productIDs)
	if len(res.Added) > 0 {
		p.carts.save(ctx, sessionID, c)
	}
	span.SetAttributes(attribute.Int("products.added", len(res.Added)), attribute.Int("products.failed", res.Failures))

	if res.Err != nil {
		logger.WithTrace(ctx, p.log).Info("identified products partially added",
			zap.String("session_id", sessionID),
			zap.Int("added", len(res.Added)),
			zap.Int("failed", res.Failures),
			zap.Error(res.Err))
	}
	return view(sessionID, c), res, nil
}

// SetQuantity sets a line's quantity. A clamp to the on-hand quantity is
// applied and reported as an *catalog.InsufficientStockError.
func (p *POS) SetQuantity(ctx context.Context, sessionID, productID string, n int) (domain.CartSnapshot, error) {
	ctx, span := p.startSpan(ctx, "SetQuantity")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.String("product.id", productID), attribute.Int("quantity", n))

	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		recordError(span, err)
		return domain.CartSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = c.SetQuantity(productID, n)
	p.carts.save(ctx, sessionID, c)
	return view(sessionID, c), err
}

func (p *POS) RemoveFromCart(ctx context.Context, sessionID, productID string) (domain.CartSnapshot, error) {
	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c.RemoveLine(productID)
	p.carts.save(ctx, sessionID, c)
	return view(sessionID, c), nil
}

func (p *POS) ClearCart(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	c, err := p.carts.get(ctx, sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c.Clear()
	p.carts.drop(ctx, sessionID)
	return view(sessionID, c), nil
}
