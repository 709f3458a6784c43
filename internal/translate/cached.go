package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
)

// Store is the subset of cache.Cache the translator needs.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedTranslator memoizes translations. Cache failures are logged and
// never fail the translation.
type CachedTranslator struct {
	next  Translator
	store Store
	ttl   time.Duration
}

func NewCachedTranslator(next Translator, store Store, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{next: next, store: store, ttl: ttl}
}

func (c *CachedTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := cacheKey(text, source, target)

	var cached string
	err := c.store.Get(ctx, key, &cached)
	switch {
	case err == nil:
		slog.Debug("translation cache hit", "key", key)
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		slog.Warn("translation cache unavailable", "error", err)
	}

	out, err := c.next.Translate(ctx, text, source, target)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(ctx, key, out, c.ttl); err != nil {
		slog.Warn("failed to cache translation", "error", err)
	}
	return out, nil
}

func cacheKey(text, source, target string) string {
	if source == "" {
		source = "auto"
	}
	sum := sha256.Sum256([]byte(text))
	return "translate:" + source + ":" + target + ":" + hex.EncodeToString(sum[:])
}
