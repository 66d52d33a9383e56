package schedule

import (
	"fmt"
	"regexp"
	"strconv"
)

// ClockMinutes is a time of day in minutes since midnight. All overlap
// arithmetic happens on this scalar regardless of the wire format.
type ClockMinutes int

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses a strict 24h "HH:MM" string.
func ParseClock(s string) (ClockMinutes, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time of day %q, must be HH:MM (00:00-23:59)", s)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return ClockMinutes(hours*60 + minutes), nil
}

func (c ClockMinutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}
