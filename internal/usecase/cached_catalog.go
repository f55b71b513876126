package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/tvcast/internal/catalog"
	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
	"github.com/hszk-dev/tvcast/internal/infrastructure/cache"
	"github.com/hszk-dev/tvcast/internal/infrastructure/metrics"
	"github.com/hszk-dev/tvcast/internal/retry"
)

// cachedCatalog wraps a VideoCatalog with memoization and retries. Every
// operation is cached independently, not-found results included, so lookups
// known to fail are not repeated against the remote. Concurrent misses for
// one key collapse into a single upstream call via singleflight; that is
// best effort, correctness only depends on what gets stored.
type cachedCatalog struct {
	delegate repository.VideoCatalog
	cache    *cache.Memory
	policy   retry.Policy
	sf       singleflight.Group
}

// NewCachedCatalog decorates delegate with the response cache and the
// backoff retry policy. The policy's retriable predicate defaults to
// catalog.IsRetriable when unset.
func NewCachedCatalog(delegate repository.VideoCatalog, responseCache *cache.Memory, policy retry.Policy) repository.VideoCatalog {
	if policy.Retriable == nil {
		policy.Retriable = catalog.IsRetriable
	}
	return &cachedCatalog{
		delegate: delegate,
		cache:    responseCache,
		policy:   policy,
	}
}

func (c *cachedCatalog) ResolveChannelID(ctx context.Context, ref string) (string, error) {
	return fetchCached(ctx, c, metrics.CatalogOpResolve, resolveKey(ref),
		func(ctx context.Context) (string, error) {
			return c.delegate.ResolveChannelID(ctx, ref)
		})
}

func (c *cachedCatalog) ListUploads(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
	return fetchCached(ctx, c, metrics.CatalogOpUploads, uploadsKey(channelID, limit),
		func(ctx context.Context) ([]model.VideoItem, error) {
			return c.delegate.ListUploads(ctx, channelID, limit)
		})
}

func (c *cachedCatalog) VideoDetail(ctx context.Context, videoID string, minimal bool) (*repository.VideoDetail, error) {
	return fetchCached(ctx, c, metrics.CatalogOpDetail, detailKey(videoID, minimal),
		func(ctx context.Context) (*repository.VideoDetail, error) {
			return c.delegate.VideoDetail(ctx, videoID, minimal)
		})
}

func (c *cachedCatalog) SearchRecent(ctx context.Context, channelID string, limit int, pageToken string) (*repository.SearchPage, error) {
	return fetchCached(ctx, c, metrics.CatalogOpSearch, searchKey(channelID, limit, pageToken),
		func(ctx context.Context) (*repository.SearchPage, error) {
			return c.delegate.SearchRecent(ctx, channelID, limit, pageToken)
		})
}

func (c *cachedCatalog) VideoStats(ctx context.Context, videoIDs []string) (map[string]uint64, error) {
	return fetchCached(ctx, c, metrics.CatalogOpStats, statsKey(videoIDs),
		func(ctx context.Context) (map[string]uint64, error) {
			return c.delegate.VideoStats(ctx, videoIDs)
		})
}

// fetchCached implements the cache-aside path shared by every operation:
// cache hit (a stored nil is a memoized not-found), otherwise one retried
// upstream call whose result, positive or negative, is stored before being
// returned.
func fetchCached[T any](ctx context.Context, c *cachedCatalog, op, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.cache.Get(key); ok {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
		if v == nil {
			return zero, fmt.Errorf("%s: %w", key, catalog.ErrNotFound)
		}
		return v.(T), nil
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()

	result, err, shared := c.sf.Do(key, func() (any, error) {
		value, err := retry.Do(ctx, c.policy, fetch)
		switch {
		case err == nil:
			c.cache.Set(key, value)
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
			metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.CatalogStatusSuccess).Inc()
			return value, nil
		case errors.Is(err, catalog.ErrNotFound):
			c.cache.Set(key, nil)
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
			metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.CatalogStatusNotFound).Inc()
			return nil, err
		default:
			metrics.CatalogRequestsTotal.WithLabelValues(op, metrics.CatalogStatusError).Inc()
			return nil, err
		}
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
