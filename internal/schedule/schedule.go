// Package schedule maps wall-clock time onto a channel's ordered slots and
// decides what is on air right now.
package schedule

import (
	"fmt"
	"time"

	"github.com/hszk-dev/tvcast/internal/domain/model"
)

// Mode selects the windowing strategy.
type Mode string

const (
	// ModeEqualDivision splits the 24-hour day evenly across the slots.
	ModeEqualDivision Mode = "equal-division"
	// ModeFixedWidth gives every slot a fixed width, anchored at the
	// current minute, for a near-term "up next" view.
	ModeFixedWidth Mode = "fixed-width"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEqualDivision, ModeFixedWidth:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown schedule window mode %q", s)
	}
}

const minutesPerDay = 1440

// ResolveAiring returns a copy of slots with at most one slot marked as
// currently airing. It never fails: an empty slice or a vacant current slot
// simply leaves nothing on air. Slot boundaries are inclusive at the start
// and exclusive at the end, and are computed from whole minutes of day.
func ResolveAiring(slots []model.Slot, now time.Time, mode Mode, slotMinutes int) []model.Slot {
	out := make([]model.Slot, len(slots))
	for i, s := range slots {
		out[i] = model.Slot{Item: s.Item}
	}

	switch mode {
	case ModeEqualDivision:
		resolveEqualDivision(out, now)
	case ModeFixedWidth:
		resolveFixedWidth(out, slotMinutes)
	}
	return out
}

// resolveEqualDivision assigns slot i the window
// [i*width, (i+1)*width) where width = 1440/N minutes.
func resolveEqualDivision(slots []model.Slot, now time.Time) {
	n := len(slots)
	if n == 0 {
		return
	}

	width := float64(minutesPerDay) / float64(n)
	idx := int(float64(minuteOfDay(now)) / width)
	if idx >= n {
		idx = n - 1
	}
	if !slots[idx].Vacant() {
		slots[idx].Airing = true
	}
}

// resolveFixedWidth anchors slot 0 at the current minute with each later
// slot offset by one width, so only the leading slot can contain now. A
// vacant leading slot leaves nothing on air.
func resolveFixedWidth(slots []model.Slot, slotMinutes int) {
	if len(slots) == 0 || slotMinutes <= 0 {
		return
	}
	if !slots[0].Vacant() {
		slots[0].Airing = true
	}
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
