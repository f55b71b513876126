package catalog

import (
	"fmt"
	"regexp"
	"strconv"
)

// fallbackMinutes is used for durations that cannot be parsed. Duration is
// cosmetic in a broadcast guide, so a lenient default beats an error.
const fallbackMinutes = 30

var (
	hoursRe   = regexp.MustCompile(`(\d+)H`)
	minutesRe = regexp.MustCompile(`(\d+)M`)
	secondsRe = regexp.MustCompile(`(\d+)S`)
)

// ParseISODuration decodes an ISO-8601 style duration such as "PT1H30M15S"
// into whole minutes. A trailing seconds component rounds the total up by
// one minute. The result is never below 1; input with no recognizable
// component yields fallbackMinutes.
func ParseISODuration(raw string) int {
	var hours, minutes, seconds int
	matched := false

	if m := hoursRe.FindStringSubmatch(raw); m != nil {
		hours, _ = strconv.Atoi(m[1])
		matched = true
	}
	if m := minutesRe.FindStringSubmatch(raw); m != nil {
		minutes, _ = strconv.Atoi(m[1])
		matched = true
	}
	if m := secondsRe.FindStringSubmatch(raw); m != nil {
		seconds, _ = strconv.Atoi(m[1])
		matched = true
	}
	if !matched {
		return fallbackMinutes
	}

	total := hours*60 + minutes
	if seconds > 0 {
		total++
	}
	if total < 1 {
		return 1
	}
	return total
}

// FormatDuration renders minutes as "1h 30m", or "45m" below one hour.
func FormatDuration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
