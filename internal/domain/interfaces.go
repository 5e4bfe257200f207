package domain

import (
	"context"
	"time"
)

// Transport issues one HTTP request against the backend and decodes the
// JSON response into out.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
	GetCached(ctx context.Context, path string, out any) error
	InvalidateCache(ctx context.Context, pathPrefix string) error
}

// Cache stores raw response bodies keyed by request path.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Reloader is a store the background refresher can re-fetch.
type Reloader interface {
	Name() string
	Loaded() bool
	Reload(ctx context.Context) error
}
