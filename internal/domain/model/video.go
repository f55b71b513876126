package model

import "time"

// VideoItem is one playable video as returned by the remote catalog.
type VideoItem struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	Link            string
	PublishedAt     time.Time
	DurationMinutes int
	DurationLabel   string
}

// Slot is one programme position in a channel schedule. A slot with no
// available video keeps Item nil; that is distinct from an item with zero
// duration. Airing is set only by the schedule resolver.
type Slot struct {
	Item   *VideoItem
	Airing bool
}

// Vacant reports whether the slot has no video.
func (s Slot) Vacant() bool {
	return s.Item == nil
}
