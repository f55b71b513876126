package model

import "errors"

// DisplayPolicy determines how a channel's candidate videos are ranked.
type DisplayPolicy string

const (
	PolicyRandom  DisplayPolicy = "random"
	PolicyPopular DisplayPolicy = "popular"
	PolicyNew     DisplayPolicy = "new"
)

func (p DisplayPolicy) IsValid() bool {
	switch p {
	case PolicyRandom, PolicyPopular, PolicyNew:
		return true
	default:
		return false
	}
}

func (p DisplayPolicy) String() string {
	return string(p)
}

// Channel represents one configured broadcast channel. Its schedule is
// recomputed on every guide read and never persisted alongside the record.
type Channel struct {
	ID            string
	Name          string
	Sources       []string
	DisplayPolicy DisplayPolicy
	StationID     int
}

var (
	ErrEmptyChannelID       = errors.New("channel ID cannot be empty")
	ErrEmptyChannelName     = errors.New("channel name cannot be empty")
	ErrNoSources            = errors.New("channel must have at least one source")
	ErrEmptySource          = errors.New("channel source cannot be empty")
	ErrInvalidDisplayPolicy = errors.New("display policy must be one of random, popular, new")
)

// NewChannel builds an unvalidated-field-free channel. ID and StationID are
// assigned later by the channel service on create.
func NewChannel(name string, sources []string, policy DisplayPolicy) (*Channel, error) {
	ch := &Channel{
		Name:          name,
		Sources:       sources,
		DisplayPolicy: policy,
	}
	if err := ch.validateFields(); err != nil {
		return nil, err
	}
	return ch, nil
}

// Validate checks a fully-assigned channel record. Stores call this when
// loading so a malformed record is refused rather than served.
func (c *Channel) Validate() error {
	if c.ID == "" {
		return ErrEmptyChannelID
	}
	return c.validateFields()
}

func (c *Channel) validateFields() error {
	if c.Name == "" {
		return ErrEmptyChannelName
	}
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for _, src := range c.Sources {
		if src == "" {
			return ErrEmptySource
		}
	}
	if !c.DisplayPolicy.IsValid() {
		return ErrInvalidDisplayPolicy
	}
	return nil
}
