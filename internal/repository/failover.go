package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ruangpulih/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCache serves from primary until it errors, then from fallback,
// probing primary again once recoveryInterval has passed.
type FailoverCache struct {
	primary  domain.Cache
	fallback domain.Cache
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverCache(primary, fallback domain.Cache, logger *zerolog.Logger) *FailoverCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary cache failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether primary should be tried, claiming the
// recovery probe when primary is down and the interval has passed.
func (r *FailoverCache) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary() {
		val, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return val, ok, nil
		}
		r.markDown(err)
	}

	return r.fallback.Get(ctx, key)
}

func (r *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, key, value, ttl)
}

// DeletePrefix clears the fallback unconditionally: entries written there
// during an outage must not survive an invalidation.
func (r *FailoverCache) DeletePrefix(ctx context.Context, prefix string) error {
	fallbackErr := r.fallback.DeletePrefix(ctx, prefix)

	if r.usePrimary() {
		if err := r.primary.DeletePrefix(ctx, prefix); err != nil {
			r.markDown(err)
		} else {
			r.isDown.Store(false)
		}
	}

	return fallbackErr
}
