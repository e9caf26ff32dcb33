package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/superscan/internal/cache"
	"github.com/fjod/go_cart/superscan/internal/cart"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/fjod/go_cart/superscan/internal/repository"
	"github.com/fjod/go_cart/superscan/pkg/circuitbreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// cartSessions holds the open cart of every register. Carts are loaded
// lazily from the cache or the cart repository when one is configured.
type cartSessions struct {
	mu      sync.Mutex
	carts   map[string]*cart.Cart
	stock   cart.StockReader
	repo    repository.CartRepository
	cache   cache.CartCache
	breaker *circuitbreaker.Breaker
	sfg     singleflight.Group // one load per session at a time
	log     *zap.Logger
}

func newCartSessions(stock cart.StockReader, repo repository.CartRepository, c cache.CartCache, log *zap.Logger) *cartSessions {
	return &cartSessions{
		carts:   make(map[string]*cart.Cart),
		stock:   stock,
		repo:    repo,
		cache:   c,
		breaker: circuitbreaker.New("cart-store", circuitbreaker.DefaultSettings(), log),
		log:     log,
	}
}

func (s *cartSessions) get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	c, ok := s.carts[sessionID]
	s.mu.Unlock()
	if ok {
		return c, nil
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		snapshot, err := s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.carts[sessionID]; ok {
			return existing, nil
		}
		loaded := cart.Restore(s.stock, snapshot.Lines)
		s.carts[sessionID] = loaded
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cart.Cart), nil
}

func (s *cartSessions) load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	empty := &domain.CartSnapshot{SessionID: sessionID}

	if s.cache != nil {
		snapshot, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return snapshot, nil // cart is in cache
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	if s.repo == nil {
		return empty, nil
	}

	var snapshot *domain.CartSnapshot
	err := s.breaker.Do(func() error {
		var getErr error
		snapshot, getErr = s.repo.GetCart(ctx, sessionID)
		if errors.Is(getErr, repository.ErrCartNotFound) {
			return nil
		}
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return empty, nil
	}

	if s.cache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, sessionID, snapshot); err != nil {
				s.log.Warn("cache set error", zap.String("session_id", sessionID), zap.Error(err))
			}
		}()
	}

	return snapshot, nil
}

// save persists the cart. Failures are logged; the in-memory cart stays
// authoritative.
func (s *cartSessions) save(ctx context.Context, sessionID string, c *cart.Cart) {
	if s.repo == nil {
		return
	}

	snapshot := &domain.CartSnapshot{SessionID: sessionID, Lines: c.Lines()}
	if c.IsEmpty() {
		s.drop(ctx, sessionID)
		return
	}

	err := s.breaker.Do(func() error { return s.repo.UpsertCart(ctx, snapshot) })
	if err != nil {
		s.log.Error("failed to persist cart", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.invalidate(sessionID)
}

func (s *cartSessions) drop(ctx context.Context, sessionID string) {
	if s.repo == nil {
		return
	}

	err := s.breaker.Do(func() error {
		if err := s.repo.DeleteCart(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to delete cart", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.invalidate(sessionID)
}

func (s *cartSessions) invalidate(sessionID string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.Warn("cache invalidate error", zap.String("session_id", sessionID), zap.Error(err))
	}
}
