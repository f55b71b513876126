package repository

import (
	"context"

	"github.com/hszk-dev/tvcast/internal/domain/model"
)

// VideoDetail holds per-video fields fetched on demand. A minimal lookup
// fills only the duration fields.
type VideoDetail struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	PublishedAt     string
	DurationMinutes int
	DurationLabel   string
}

// SearchPage is one page of recent videos for a channel.
type SearchPage struct {
	Items         []model.VideoItem
	NextPageToken string
}

// VideoCatalog defines the remote video catalog boundary. Implementations
// return catalog.ErrNotFound (wrapped) when a reference resolves to nothing;
// that is a result, not a failure, and callers cache it like any other.
type VideoCatalog interface {
	// ResolveChannelID turns a channel reference (any supported URL form)
	// into a catalog channel identifier.
	ResolveChannelID(ctx context.Context, ref string) (string, error)

	// ListUploads returns up to limit items from the channel's uploads,
	// newest first as served by the catalog.
	ListUploads(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error)

	// VideoDetail fetches detail for one video. With minimal set, only the
	// duration fields are populated.
	VideoDetail(ctx context.Context, videoID string, minimal bool) (*VideoDetail, error)

	// SearchRecent lists a channel's recent videos with pagination.
	SearchRecent(ctx context.Context, channelID string, limit int, pageToken string) (*SearchPage, error)

	// VideoStats returns view counts for the given video IDs. IDs the
	// catalog knows nothing about are absent from the map.
	VideoStats(ctx context.Context, videoIDs []string) (map[string]uint64, error)
}
