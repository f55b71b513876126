package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/tvcast/internal/catalog"
	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
	"github.com/hszk-dev/tvcast/internal/infrastructure/metrics"
	"github.com/hszk-dev/tvcast/internal/schedule"
)

// ChannelGuide is one channel with its computed schedule. Slots are
// recomputed from the remote catalog on every read and never persisted.
type ChannelGuide struct {
	Channel *model.Channel
	Slots   []model.Slot
}

// GuideServiceConfig holds configuration for GuideService.
type GuideServiceConfig struct {
	// PerSourceLimit caps how many uploads are fetched per source before
	// ranking. "popular" sorts only this window by view count, so a small
	// limit trades ranking accuracy for quota.
	PerSourceLimit int
	// MaxItems caps each channel's guide after ranking.
	MaxItems int
	// ScheduleItems is the slot count for the single-channel schedule
	// view; short channels are padded with vacant slots.
	ScheduleItems int
	// WindowMode and SlotMinutes select the airing window strategy.
	WindowMode  schedule.Mode
	SlotMinutes int
	// FetchParallel bounds concurrent per-channel assembly.
	FetchParallel int
}

// DefaultGuideServiceConfig returns the default configuration.
func DefaultGuideServiceConfig() GuideServiceConfig {
	return GuideServiceConfig{
		PerSourceLimit: 3,
		MaxItems:       5,
		ScheduleItems:  12,
		WindowMode:     schedule.ModeEqualDivision,
		SlotMinutes:    30,
		FetchParallel:  4,
	}
}

// GuideService assembles broadcast schedules for configured channels.
type GuideService interface {
	// Guide returns every configured channel with its ranked slots and
	// airing flags. A channel whose sources all fail is returned with
	// empty slots, never omitted.
	Guide(ctx context.Context) ([]ChannelGuide, error)

	// ChannelSchedule returns the slot-padded schedule for one channel.
	ChannelSchedule(ctx context.Context, channelID string) (*ChannelGuide, error)

	// MoreVideos pages through a channel's recent videos on demand.
	MoreVideos(ctx context.Context, channelID string, pageToken string, limit int) (*repository.SearchPage, error)
}

type guideService struct {
	repo    repository.ChannelRepository
	catalog repository.VideoCatalog
	cfg     GuideServiceConfig
	logger  *slog.Logger

	now func() time.Time
}

// NewGuideService creates a GuideService. The catalog is expected to be the
// cached, retrying decorator.
func NewGuideService(
	repo repository.ChannelRepository,
	videoCatalog repository.VideoCatalog,
	cfg GuideServiceConfig,
	logger *slog.Logger,
) GuideService {
	return &guideService{
		repo:    repo,
		catalog: videoCatalog,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Guide assembles the full lineup. Channels are fetched concurrently but
// the response preserves repository order, and each channel's item order is
// determined solely by its display policy.
func (s *guideService) Guide(ctx context.Context) ([]ChannelGuide, error) {
	channels, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	guides := make([]ChannelGuide, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchParallel)

	for i, ch := range channels {
		g.Go(func() error {
			slots := s.selectForChannel(gctx, ch)
			guides[i] = ChannelGuide{
				Channel: ch,
				Slots:   schedule.ResolveAiring(slots, s.now(), s.cfg.WindowMode, s.cfg.SlotMinutes),
			}
			return nil
		})
	}
	// Workers only write their own index and never return errors; Wait is
	// for completion.
	_ = g.Wait()

	return guides, nil
}

// ChannelSchedule builds the long-form schedule for one channel from its
// recent videos, padded with vacant slots to the configured length.
func (s *guideService) ChannelSchedule(ctx context.Context, channelID string) (*ChannelGuide, error) {
	ch, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	slots := make([]model.Slot, 0, s.cfg.ScheduleItems)
	items, err := s.recentForChannel(ctx, ch)
	if err != nil {
		s.logger.Warn("channel schedule degraded to empty",
			slog.String("channel_id", ch.ID),
			slog.String("error", err.Error()),
		)
	} else {
		for i := range items {
			if len(slots) == s.cfg.ScheduleItems {
				break
			}
			item := items[i]
			s.enrichDuration(ctx, &item)
			slots = append(slots, model.Slot{Item: &item})
		}
	}
	for len(slots) < s.cfg.ScheduleItems {
		slots = append(slots, model.Slot{})
	}

	return &ChannelGuide{
		Channel: ch,
		Slots:   schedule.ResolveAiring(slots, s.now(), s.cfg.WindowMode, s.cfg.SlotMinutes),
	}, nil
}

// MoreVideos pages through a channel's recent uploads.
func (s *guideService) MoreVideos(ctx context.Context, channelID string, pageToken string, limit int) (*repository.SearchPage, error) {
	ch, err := s.repo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	catalogID, err := s.resolveFirstSource(ctx, ch)
	if err != nil {
		return nil, err
	}

	page, err := s.catalog.SearchRecent(ctx, catalogID, limit, pageToken)
	if err != nil {
		return nil, fmt.Errorf("search recent for channel %s: %w", ch.ID, err)
	}

	enriched := make([]model.VideoItem, len(page.Items))
	for i := range page.Items {
		enriched[i] = page.Items[i]
		s.enrichDuration(ctx, &enriched[i])
	}
	return &repository.SearchPage{Items: enriched, NextPageToken: page.NextPageToken}, nil
}

// selectForChannel produces the channel's ranked slots. A failed source is
// logged and skipped so the remaining sources still serve; when everything
// fails the channel degrades to zero slots.
func (s *guideService) selectForChannel(ctx context.Context, ch *model.Channel) []model.Slot {
	var combined []model.VideoItem
	failed := 0

	for _, src := range ch.Sources {
		items, err := s.fetchSource(ctx, src)
		if err != nil {
			failed++
			s.logger.Warn("skipping failed source",
				slog.String("channel_id", ch.ID),
				slog.String("source", src),
				slog.String("error", err.Error()),
			)
			continue
		}
		combined = append(combined, items...)
	}

	switch {
	case failed == len(ch.Sources) && failed > 0:
		metrics.GuideBuildsTotal.WithLabelValues(metrics.GuideStatusEmpty).Inc()
	case failed > 0:
		metrics.GuideBuildsTotal.WithLabelValues(metrics.GuideStatusDegraded).Inc()
	default:
		metrics.GuideBuildsTotal.WithLabelValues(metrics.GuideStatusOK).Inc()
	}

	combined = dedupeByID(combined)
	s.rank(ctx, combined, ch.DisplayPolicy)
	if len(combined) > s.cfg.MaxItems {
		combined = combined[:s.cfg.MaxItems]
	}

	slots := make([]model.Slot, 0, len(combined))
	for i := range combined {
		item := combined[i]
		s.enrichDuration(ctx, &item)
		slots = append(slots, model.Slot{Item: &item})
	}
	return slots
}

// fetchSource resolves one source reference and lists its uploads. An
// unresolvable reference yields no items rather than an error, matching the
// not-found-is-a-result contract.
func (s *guideService) fetchSource(ctx context.Context, src string) ([]model.VideoItem, error) {
	catalogID, err := s.catalog.ResolveChannelID(ctx, src)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	items, err := s.catalog.ListUploads(ctx, catalogID, s.cfg.PerSourceLimit)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// The cached catalog hands out shared slices; rank mutates order, so
	// work on a copy.
	return append([]model.VideoItem(nil), items...), nil
}

// rank orders items in place per the display policy. "new" and "popular"
// are deterministic stable sorts; "random" is intentionally not.
func (s *guideService) rank(ctx context.Context, items []model.VideoItem, policy model.DisplayPolicy) {
	switch policy {
	case model.PolicyNew:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		})
	case model.PolicyPopular:
		counts := s.viewCounts(ctx, items)
		sort.SliceStable(items, func(i, j int) bool {
			return counts[items[i].ID] > counts[items[j].ID]
		})
	case model.PolicyRandom:
		rand.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
}

// viewCounts fetches view statistics for ranking. On failure every item
// counts as zero, preserving the incoming order under the stable sort.
func (s *guideService) viewCounts(ctx context.Context, items []model.VideoItem) map[string]uint64 {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	counts, err := s.catalog.VideoStats(ctx, ids)
	if err != nil {
		s.logger.Warn("view counts unavailable, keeping fetch order",
			slog.String("error", err.Error()),
		)
		return map[string]uint64{}
	}
	return counts
}

// enrichDuration fills the duration fields from a minimal detail lookup,
// falling back to the lenient 30-minute default.
func (s *guideService) enrichDuration(ctx context.Context, item *model.VideoItem) {
	detail, err := s.catalog.VideoDetail(ctx, item.ID, true)
	if err != nil {
		item.DurationMinutes = 30
		item.DurationLabel = "30m"
		return
	}
	item.DurationMinutes = detail.DurationMinutes
	item.DurationLabel = detail.DurationLabel
}

// resolveFirstSource returns the catalog ID of the first resolvable source.
func (s *guideService) resolveFirstSource(ctx context.Context, ch *model.Channel) (string, error) {
	var lastErr error
	for _, src := range ch.Sources {
		id, err := s.catalog.ResolveChannelID(ctx, src)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = catalog.ErrNotFound
	}
	return "", fmt.Errorf("no resolvable source for channel %s: %w", ch.ID, lastErr)
}

// recentForChannel lists recent videos from the channel's first resolvable
// source for the long-form schedule.
func (s *guideService) recentForChannel(ctx context.Context, ch *model.Channel) ([]model.VideoItem, error) {
	catalogID, err := s.resolveFirstSource(ctx, ch)
	if err != nil {
		return nil, err
	}
	page, err := s.catalog.SearchRecent(ctx, catalogID, s.cfg.ScheduleItems, "")
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func dedupeByID(items []model.VideoItem) []model.VideoItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
