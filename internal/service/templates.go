package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/superscan/internal/domain"
)

func (p *POS) ListTemplates(_ context.Context) []domain.ReceiptTemplate {
	return p.templates.List()
}

func (p *POS) GetTemplate(_ context.Context, id string) (domain.ReceiptTemplate, error) {
	return p.templates.Get(id)
}

func (p *POS) AddTemplate(ctx context.Context) (domain.ReceiptTemplate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, err := p.templates.Add()
	if err != nil {
		return domain.ReceiptTemplate{}, err
	}
	if err := p.store.SaveTemplates(ctx, t); err != nil {
		_, _ = p.templates.Delete(t.ID)
		return domain.ReceiptTemplate{}, fmt.Errorf("failed to save receipt template: %w", err)
	}
	return t, nil
}

func (p *POS) UpdateTemplate(ctx context.Context, id string, t domain.ReceiptTemplate) (domain.ReceiptTemplate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, err := p.templates.Get(id)
	if err != nil {
		return domain.ReceiptTemplate{}, err
	}
	updated, err := p.templates.Update(id, t)
	if err != nil {
		return domain.ReceiptTemplate{}, err
	}
	if err := p.store.SaveTemplates(ctx, updated); err != nil {
		p.templates.Put(prev)
		return domain.ReceiptTemplate{}, fmt.Errorf("failed to save receipt template: %w", err)
	}
	return updated, nil
}

func (p *POS) DeleteTemplate(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed, err := p.templates.Delete(id)
	if err != nil {
		return err
	}
	if err := p.store.DeleteTemplate(ctx, id); err != nil {
		p.templates.Put(removed)
		return fmt.Errorf("failed to delete receipt template: %w", err)
	}
	return nil
}
