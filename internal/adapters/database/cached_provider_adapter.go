package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
)

const activeProvidersCacheKey = "coverage:providers:active"

// CachedProviderAdapter wraps a ProviderRepository with a short-lived cache
// of the active catalog. It serves read paths only; the tier toggle reads
// the store directly so a deactivated provider is seen immediately.
type CachedProviderAdapter struct {
	adapter repositories.ProviderRepository
	cache   providers.CacheProvider
	ttl     time.Duration
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider, ttl time.Duration) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
	}
}

// ListActive returns the cached catalog, loading it on a miss
func (a *CachedProviderAdapter) ListActive(ctx context.Context) ([]*entities.InsuranceProvider, error) {
	cached, err := a.cache.Get(ctx, activeProvidersCacheKey)
	switch {
	case err == nil:
		var list []*entities.InsuranceProvider
		decodeErr := json.Unmarshal(cached, &list)
		if decodeErr == nil {
			return list, nil
		}
		log.Warn().Err(decodeErr).Msg("failed to decode cached provider catalog")
	case !errors.Is(err, providers.ErrCacheMiss):
		log.Warn().Err(err).Msg("provider catalog cache unavailable")
	}

	list, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(list); err == nil {
		if err := a.cache.Set(ctx, activeProvidersCacheKey, data, a.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache provider catalog")
		}
	}
	return list, nil
}

// Invalidate drops the cached catalog
func (a *CachedProviderAdapter) Invalidate(ctx context.Context) error {
	return a.cache.Delete(ctx, activeProvidersCacheKey)
}
