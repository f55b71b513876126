package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
)

// baseStationID is the floor below which station IDs are never assigned;
// the first auto-assigned station is 201.
const baseStationID = 200

// CreateChannelInput contains the input parameters for creating a channel.
// StationID zero means "assign the next free one".
type CreateChannelInput struct {
	Name          string
	Sources       []string
	DisplayPolicy model.DisplayPolicy
	StationID     int
}

// UpdateChannelInput contains the replacement record for a channel. The
// identifier always comes from the request path, never the body.
type UpdateChannelInput struct {
	Name          string
	Sources       []string
	DisplayPolicy model.DisplayPolicy
	StationID     int
}

// ChannelService defines channel configuration operations.
type ChannelService interface {
	ListChannels(ctx context.Context) ([]*model.Channel, error)
	GetChannel(ctx context.Context, id string) (*model.Channel, error)
	CreateChannel(ctx context.Context, input CreateChannelInput) (*model.Channel, error)
	UpdateChannel(ctx context.Context, id string, input UpdateChannelInput) (*model.Channel, error)
	DeleteChannel(ctx context.Context, id string) (*model.Channel, error)
}

type channelService struct {
	repo repository.ChannelRepository
}

// NewChannelService creates a ChannelService.
func NewChannelService(repo repository.ChannelRepository) ChannelService {
	return &channelService{repo: repo}
}

func (s *channelService) ListChannels(ctx context.Context) ([]*model.Channel, error) {
	return s.repo.List(ctx)
}

func (s *channelService) GetChannel(ctx context.Context, id string) (*model.Channel, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateChannel validates the input, assigns the next numeric identifier
// and, when none was supplied, the next station ID.
func (s *channelService) CreateChannel(ctx context.Context, input CreateChannelInput) (*model.Channel, error) {
	ch, err := model.NewChannel(input.Name, input.Sources, input.DisplayPolicy)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	ch.ID = strconv.Itoa(nextChannelID(existing))
	ch.StationID = input.StationID
	if ch.StationID == 0 {
		ch.StationID = nextStationID(existing)
	}

	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

// UpdateChannel replaces the record under the path identifier.
func (s *channelService) UpdateChannel(ctx context.Context, id string, input UpdateChannelInput) (*model.Channel, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch := &model.Channel{
		ID:            id,
		Name:          input.Name,
		Sources:       input.Sources,
		DisplayPolicy: input.DisplayPolicy,
		StationID:     input.StationID,
	}
	if ch.StationID == 0 {
		ch.StationID = current.StationID
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return ch, nil
}

func (s *channelService) DeleteChannel(ctx context.Context, id string) (*model.Channel, error) {
	return s.repo.Delete(ctx, id)
}

// nextChannelID is one above the highest numeric identifier in use.
// Non-numeric identifiers are ignored.
func nextChannelID(channels []*model.Channel) int {
	maxID := 0
	for _, ch := range channels {
		n, err := strconv.Atoi(ch.ID)
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// nextStationID is one above the highest station in use, with a floor so
// the first assigned station is baseStationID+1.
func nextStationID(channels []*model.Channel) int {
	maxStation := baseStationID
	for _, ch := range channels {
		if ch.StationID > maxStation {
			maxStation = ch.StationID
		}
	}
	return maxStation + 1
}
