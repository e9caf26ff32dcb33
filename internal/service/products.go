package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/superscan/internal/catalog"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/fjod/go_cart/superscan/internal/repository"
	"github.com/fjod/go_cart/superscan/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (p *POS) ListProducts(_ context.Context) []domain.Product {
	return p.catalog.List()
}

func (p *POS) SearchProducts(_ context.Context, query string) []domain.Product {
	return p.catalog.Search(query)
}

func (p *POS) GetProduct(_ context.Context, id string) (domain.Product, error) {
	prod, ok := p.catalog.Find(id)
	if !ok {
		return domain.Product{}, &catalog.NotFoundError{ProductID: id}
	}
	return prod, nil
}

// AddProducts creates products in one update. If they cannot be persisted
// the catalog is left as it was.
func (p *POS) AddProducts(ctx context.Context, attrs ...domain.ProductAttrs) ([]domain.Product, error) {
	ctx, span := p.startSpan(ctx, "AddProducts")
	defer span.End()
	span.SetAttributes(attribute.Int("products.count", len(attrs)))

	p.mu.Lock()
	defer p.mu.Unlock()

	added := p.catalog.AddBatch(attrs)
	if err := p.store.SaveProducts(ctx, added...); err != nil {
		for _, prod := range added {
			_, _ = p.catalog.Remove(prod.ID)
		}
		recordError(span, err)
		return nil, fmt.Errorf("failed to save products: %w", err)
	}

	logger.WithTrace(ctx, p.log).Info("products added", zap.Int("count", len(added)))
	return added, nil
}

func (p *POS) UpdateProduct(ctx context.Context, id string, attrs domain.ProductAttrs) (domain.Product, error) {
	ctx, span := p.startSpan(ctx, "UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	p.mu.Lock()
	defer p.mu.Unlock()

	prev, ok := p.catalog.Find(id)
	if !ok {
		return domain.Product{}, &catalog.NotFoundError{ProductID: id}
	}
	updated, err := p.catalog.Update(id, attrs)
	if err != nil {
		return domain.Product{}, err
	}
	if err := p.store.SaveProducts(ctx, updated); err != nil {
		p.catalog.Put(prev)
		recordError(span, err)
		return domain.Product{}, fmt.Errorf("failed to save product: %w", err)
	}
	return updated, nil
}

// RemoveProduct deletes a product. Recorded transactions keep their copy.
func (p *POS) RemoveProduct(ctx context.Context, id string) error {
	ctx, span := p.startSpan(ctx, "RemoveProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	p.mu.Lock()
	defer p.mu.Unlock()

	removed, err := p.catalog.Remove(id)
	if err != nil {
		return err
	}
	if err := p.store.DeleteProduct(ctx, id); err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		p.catalog.Put(removed)
		recordError(span, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.WithTrace(ctx, p.log).Info("product removed", zap.String("product_id", id))
	return nil
}
