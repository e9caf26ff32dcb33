package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/superscan/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, sessionID string, cart *domain.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
