package schedule

import "fmt"

// Occupant is a committed allocation as the guard sees it. Callers
// fetch occupants already scoped to one (resource key, day) pair, so
// the guard only has to compare intervals.
type Occupant struct {
	ID          string
	ResourceKey string
	Day         string
	Interval    Interval
	Label       string
}

// Conflict identifies the committed occupant blocking a proposal.
type Conflict struct {
	Occupant Occupant
}

func (c *Conflict) Error() string {
	label := c.Occupant.Label
	if label == "" {
		label = c.Occupant.ResourceKey
	}
	return fmt.Sprintf("%s is already allocated on %s %s",
		label, c.Occupant.Day, c.Occupant.Interval)
}

// Check evaluates a proposed interval against committed occupants.
// excludeID names the record being updated so it never conflicts with
// itself; pass "" on create. Returns nil when the proposal is free.
//
// Check is pure. The non-overlap invariant it establishes only holds
// post-commit when the caller serializes check-and-commit per
// (resource key, day); see the slot lock in pkg/db/mongo.
func Check(proposed Interval, occupants []Occupant, excludeID string) *Conflict {
	for _, occ := range occupants {
		if excludeID != "" && occ.ID == excludeID {
			continue
		}
		if Overlaps(proposed, occ.Interval) {
			o := occ
			return &Conflict{Occupant: o}
		}
	}
	return nil
}
