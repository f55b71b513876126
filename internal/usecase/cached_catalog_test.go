package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hszk-dev/tvcast/internal/catalog"
	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/infrastructure/cache"
	"github.com/hszk-dev/tvcast/internal/retry"
)

func testRetryPolicy(maxRetries int) retry.Policy {
	return retry.Policy{
		MaxRetries:    maxRetries,
		BaseDelay:     time.Millisecond,
		BackoffFactor: 2,
		Retriable:     catalog.IsRetriable,
	}
}

func TestCachedCatalog_MemoizesResolve(t *testing.T) {
	calls := 0
	inner := &mockCatalog{
		resolveFn: func(ctx context.Context, ref string) (string, error) {
			calls++
			return "UC123", nil
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(0))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cc.ResolveChannelID(ctx, "https://www.youtube.com/@handle")
		if err != nil {
			t.Fatalf("ResolveChannelID() error = %v", err)
		}
		if got != "UC123" {
			t.Errorf("ResolveChannelID() = %q, want UC123", got)
		}
	}
	if calls != 1 {
		t.Errorf("delegate called %d times, want 1", calls)
	}
}

func TestCachedCatalog_MemoizesNotFound(t *testing.T) {
	calls := 0
	inner := &mockCatalog{
		resolveFn: func(ctx context.Context, ref string) (string, error) {
			calls++
			return "", catalog.ErrNotFound
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cc.ResolveChannelID(ctx, "https://www.youtube.com/c/ghost")
		if !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("ResolveChannelID() error = %v, want ErrNotFound", err)
		}
	}
	if calls != 1 {
		t.Errorf("delegate called %d times, want 1 (negative result must be cached)", calls)
	}
}

func TestCachedCatalog_RetriesTransientErrors(t *testing.T) {
	calls := 0
	inner := &mockCatalog{
		uploadsFn: func(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
			calls++
			if calls < 3 {
				return nil, &catalog.RemoteError{Op: "listUploads", StatusCode: 503, Retriable: true, Err: errors.New("unavailable")}
			}
			return []model.VideoItem{{ID: "vid1"}}, nil
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(3))

	items, err := cc.ListUploads(context.Background(), "UC123", 5)
	if err != nil {
		t.Fatalf("ListUploads() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "vid1" {
		t.Errorf("items = %+v", items)
	}
	if calls != 3 {
		t.Errorf("delegate called %d times, want 3", calls)
	}
}

func TestCachedCatalog_ExhaustedRetriesAreNotCached(t *testing.T) {
	calls := 0
	inner := &mockCatalog{
		uploadsFn: func(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
			calls++
			return nil, &catalog.RemoteError{Op: "listUploads", StatusCode: 500, Retriable: true, Err: errors.New("boom")}
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(1))
	ctx := context.Background()

	if _, err := cc.ListUploads(ctx, "UC123", 5); err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Fatalf("delegate called %d times, want 2 (maxRetries+1)", calls)
	}

	// A failure is not a result: the next call must go upstream again.
	if _, err := cc.ListUploads(ctx, "UC123", 5); err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("delegate called %d times total, want 4", calls)
	}
}

func TestCachedCatalog_NonRetriableSingleAttempt(t *testing.T) {
	calls := 0
	inner := &mockCatalog{
		statsFn: func(ctx context.Context, videoIDs []string) (map[string]uint64, error) {
			calls++
			return nil, &catalog.RemoteError{Op: "videoStats", StatusCode: 403, Retriable: false, Err: errors.New("quota")}
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(5))

	_, err := cc.VideoStats(context.Background(), []string{"vid1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("delegate called %d times, want 1 for non-retriable error", calls)
	}
}

func TestCachedCatalog_DistinctArgumentsDistinctEntries(t *testing.T) {
	var seen []string
	inner := &mockCatalog{
		uploadsFn: func(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
			seen = append(seen, channelID)
			return []model.VideoItem{}, nil
		},
	}
	cc := NewCachedCatalog(inner, cache.NewMemory(10, time.Hour), testRetryPolicy(0))
	ctx := context.Background()

	cc.ListUploads(ctx, "UCa", 5)
	cc.ListUploads(ctx, "UCb", 5)
	cc.ListUploads(ctx, "UCa", 5)

	if len(seen) != 2 {
		t.Errorf("delegate saw %v, want one call per distinct channel", seen)
	}
}
