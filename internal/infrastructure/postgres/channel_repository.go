package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
)

// DBTX abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChannelRepository implements repository.ChannelRepository using PostgreSQL.
type ChannelRepository struct {
	db DBTX
}

// NewChannelRepository creates a new ChannelRepository instance.
func NewChannelRepository(db DBTX) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// List retrieves all channels ordered by station ID.
func (r *ChannelRepository) List(ctx context.Context) ([]*model.Channel, error) {
	const query = `
		SELECT id, name, sources, display_policy, station_id
		FROM channels
		ORDER BY station_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []*model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}

	return channels, nil
}

// GetByID retrieves a channel by its identifier.
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	const query = `
		SELECT id, name, sources, display_policy, station_id
		FROM channels
		WHERE id = $1
	`

	ch, err := scanChannel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel by ID: %w", err)
	}

	return ch, nil
}

// Create persists a new channel record.
func (r *ChannelRepository) Create(ctx context.Context, channel *model.Channel) error {
	const query = `
		INSERT INTO channels (id, name, sources, display_policy, station_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		channel.ID,
		channel.Name,
		channel.Sources,
		channel.DisplayPolicy.String(),
		channel.StationID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateChannel
		}
		return fmt.Errorf("failed to create channel: %w", err)
	}

	return nil
}

// Update replaces an existing channel record.
func (r *ChannelRepository) Update(ctx context.Context, channel *model.Channel) error {
	const query = `
		UPDATE channels
		SET name = $2, sources = $3, display_policy = $4, station_id = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		channel.ID,
		channel.Name,
		channel.Sources,
		channel.DisplayPolicy.String(),
		channel.StationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrChannelNotFound
	}

	return nil
}

// Delete removes a channel and returns the removed record.
func (r *ChannelRepository) Delete(ctx context.Context, id string) (*model.Channel, error) {
	const query = `
		DELETE FROM channels
		WHERE id = $1
		RETURNING id, name, sources, display_policy, station_id
	`

	ch, err := scanChannel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to delete channel: %w", err)
	}

	return ch, nil
}

func scanChannel(row pgx.Row) (*model.Channel, error) {
	var (
		ch     model.Channel
		policy string
	)
	if err := row.Scan(&ch.ID, &ch.Name, &ch.Sources, &policy, &ch.StationID); err != nil {
		return nil, err
	}
	ch.DisplayPolicy = model.DisplayPolicy(policy)
	return &ch, nil
}
