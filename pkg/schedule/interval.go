// Package schedule is the temporal conflict-detection engine shared by
// every allocation kind: class sessions, room bookings, and equipment
// bookings. It decides whether a proposed time range may be committed
// against the set already committed for the same resource and day.
package schedule

import "fmt"

// Interval is a half-open time range [Start, End) within one day.
type Interval struct {
	Start ClockMinutes
	End   ClockMinutes
}

// NewInterval builds an interval, rejecting empty and inverted ranges.
func NewInterval(start, end ClockMinutes) (Interval, error) {
	if start >= end {
		return Interval{}, fmt.Errorf("interval end %s must be after start %s", end, start)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval builds an interval from two "HH:MM" strings.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s-%s", iv.Start, iv.End)
}

// Overlaps is the canonical overlap rule for intervals on the same
// resource and day: strict half-open comparison, so an interval ending
// exactly when another starts does not conflict.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}
