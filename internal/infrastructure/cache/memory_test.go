package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comparaprecios/backend/internal/domain"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns cache miss for unknown key", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		_, err := c.Get(ctx, "missing")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("set then get round-trips the value", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		want := &domain.SearchResult{Items: []domain.ProductRecord{{Title: "iPhone 13 128GB", Price: 2500000}}}

		if err := c.Set(ctx, "search:iphone 13", want, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		value, err := c.Get(ctx, "search:iphone 13")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		got, ok := value.(*domain.SearchResult)
		if !ok {
			t.Fatalf("value type = %T, want *domain.SearchResult", value)
		}
		if len(got.Items) != 1 || got.Items[0].Title != "iPhone 13 128GB" {
			t.Errorf("got = %+v, want the stored result", got)
		}
	})

	t.Run("entries expire after their TTL", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		if err := c.Set(ctx, "key", "value", 20*time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		time.Sleep(40 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error after expiry = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		_ = c.Set(ctx, "key", "value", time.Minute)
		if err := c.Delete(ctx, "key"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		exists, err := c.Exists(ctx, "key")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Error("Exists() = true after delete, want false")
		}
	})

	t.Run("exists reports live entries", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		_ = c.Set(ctx, "key", "value", time.Minute)
		exists, err := c.Exists(ctx, "key")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !exists {
			t.Error("Exists() = false, want true")
		}
	})
}
