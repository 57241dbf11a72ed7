package domain

import (
	"context"
	"time"
)

// SourceAdapter is the capability contract every retailer integration
// satisfies: given a query, produce normalized records or fail on its own
// without affecting other sources. Implementations own their timeouts.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]ProductRecord, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Token holds a marketplace OAuth credential set.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenStore persists marketplace OAuth tokens between runs. Load returns
// ErrTokenUnavailable when nothing has been stored yet.
type TokenStore interface {
	Load() (*Token, error)
	Save(token *Token) error
}
