package repository

import (
	"context"

	"github.com/hszk-dev/tvcast/internal/domain/model"
)

// ChannelRepository defines the interface for channel record persistence.
// Implementations should be provided by the infrastructure layer (JSON file
// or PostgreSQL). Implementations must refuse to serve malformed records.
type ChannelRepository interface {
	// List retrieves all configured channels.
	// Returns an empty slice when no channels exist.
	List(ctx context.Context) ([]*model.Channel, error)

	// GetByID retrieves a channel by its identifier.
	// Returns ErrChannelNotFound if the channel does not exist.
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// Create persists a new channel record.
	// Returns ErrDuplicateChannel if the identifier is already taken.
	Create(ctx context.Context, ch *model.Channel) error

	// Update replaces an existing channel record.
	// Returns ErrChannelNotFound if the channel does not exist.
	Update(ctx context.Context, ch *model.Channel) error

	// Delete removes a channel record and returns the removed channel.
	// Returns ErrChannelNotFound if the channel does not exist.
	Delete(ctx context.Context, id string) (*model.Channel, error)
}
