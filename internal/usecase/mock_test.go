package usecase

import (
	"context"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
)

// mockChannelRepository provides a configurable mock for ChannelRepository.
type mockChannelRepository struct {
	listFn    func(ctx context.Context) ([]*model.Channel, error)
	getByIDFn func(ctx context.Context, id string) (*model.Channel, error)
	createFn  func(ctx context.Context, ch *model.Channel) error
	updateFn  func(ctx context.Context, ch *model.Channel) error
	deleteFn  func(ctx context.Context, id string) (*model.Channel, error)
}

func (m *mockChannelRepository) List(ctx context.Context) ([]*model.Channel, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrChannelNotFound
}

func (m *mockChannelRepository) Create(ctx context.Context, ch *model.Channel) error {
	if m.createFn != nil {
		return m.createFn(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Update(ctx context.Context, ch *model.Channel) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Delete(ctx context.Context, id string) (*model.Channel, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, repository.ErrChannelNotFound
}

// mockCatalog provides a configurable mock for VideoCatalog.
type mockCatalog struct {
	resolveFn func(ctx context.Context, ref string) (string, error)
	uploadsFn func(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error)
	detailFn  func(ctx context.Context, videoID string, minimal bool) (*repository.VideoDetail, error)
	searchFn  func(ctx context.Context, channelID string, limit int, pageToken string) (*repository.SearchPage, error)
	statsFn   func(ctx context.Context, videoIDs []string) (map[string]uint64, error)
}

func (m *mockCatalog) ResolveChannelID(ctx context.Context, ref string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, ref)
	}
	return "UC" + ref, nil
}

func (m *mockCatalog) ListUploads(ctx context.Context, channelID string, limit int) ([]model.VideoItem, error) {
	if m.uploadsFn != nil {
		return m.uploadsFn(ctx, channelID, limit)
	}
	return nil, nil
}

func (m *mockCatalog) VideoDetail(ctx context.Context, videoID string, minimal bool) (*repository.VideoDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, videoID, minimal)
	}
	return &repository.VideoDetail{ID: videoID, DurationMinutes: 10, DurationLabel: "10m"}, nil
}

func (m *mockCatalog) SearchRecent(ctx context.Context, channelID string, limit int, pageToken string) (*repository.SearchPage, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, channelID, limit, pageToken)
	}
	return &repository.SearchPage{}, nil
}

func (m *mockCatalog) VideoStats(ctx context.Context, videoIDs []string) (map[string]uint64, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, videoIDs)
	}
	return map[string]uint64{}, nil
}
