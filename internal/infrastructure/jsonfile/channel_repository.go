// Package jsonfile persists channel configuration as a single JSON document
// on local disk. The whole file is read and rewritten on every mutation,
// which keeps the format trivially inspectable and editable by hand.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/hszk-dev/tvcast/internal/domain/model"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
)

type channelRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Sources       []string `json:"sources"`
	DisplayPolicy string   `json:"display_policy"`
	StationID     int      `json:"station_id"`
}

// ChannelRepository implements repository.ChannelRepository over a JSON
// file. All operations serialize on one mutex; the store is meant for a
// single process.
type ChannelRepository struct {
	path string
	mu   sync.Mutex
}

// NewChannelRepository creates a file-backed channel repository. A missing
// file is treated as an empty store and created on first write.
func NewChannelRepository(path string) *ChannelRepository {
	return &ChannelRepository{path: path}
}

func (r *ChannelRepository) List(ctx context.Context) ([]*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, repository.ErrChannelNotFound
}

func (r *ChannelRepository) Create(ctx context.Context, channel *model.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, err := r.load()
	if err != nil {
		return err
	}
	for _, ch := range channels {
		if ch.ID == channel.ID {
			return repository.ErrDuplicateChannel
		}
	}
	channels = append(channels, channel)
	return r.save(channels)
}

func (r *ChannelRepository) Update(ctx context.Context, channel *model.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, err := r.load()
	if err != nil {
		return err
	}
	for i, ch := range channels {
		if ch.ID == channel.ID {
			channels[i] = channel
			return r.save(channels)
		}
	}
	return repository.ErrChannelNotFound
}

func (r *ChannelRepository) Delete(ctx context.Context, id string) (*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, err := r.load()
	if err != nil {
		return nil, err
	}
	for i, ch := range channels {
		if ch.ID == id {
			removed := ch
			channels = append(channels[:i], channels[i+1:]...)
			if err := r.save(channels); err != nil {
				return nil, err
			}
			return removed, nil
		}
	}
	return nil, repository.ErrChannelNotFound
}

// load reads and validates the full channel list. A record that fails
// validation poisons the load; serving a partial list would silently drop
// channels from the guide.
func (r *ChannelRepository) load() ([]*model.Channel, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var records []channelRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}

	channels := make([]*model.Channel, 0, len(records))
	for _, rec := range records {
		ch := &model.Channel{
			ID:            rec.ID,
			Name:          rec.Name,
			Sources:       rec.Sources,
			DisplayPolicy: model.DisplayPolicy(rec.DisplayPolicy),
			StationID:     rec.StationID,
		}
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("invalid channel record %q in %s: %w", rec.ID, r.path, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// save writes the full list through a uniquely named temp file in the same
// directory and renames it into place, so readers never observe a torn
// write.
func (r *ChannelRepository) save(channels []*model.Channel) error {
	records := make([]channelRecord, len(channels))
	for i, ch := range channels {
		records[i] = channelRecord{
			ID:            ch.ID,
			Name:          ch.Name,
			Sources:       ch.Sources,
			DisplayPolicy: ch.DisplayPolicy.String(),
			StationID:     ch.StationID,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(r.path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
