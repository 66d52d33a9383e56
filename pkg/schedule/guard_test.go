package schedule

import "testing"

func occupant(t *testing.T, id, start, end string) Occupant {
	t.Helper()
	return Occupant{
		ID:          id,
		ResourceKey: "room-r1",
		Day:         "Monday",
		Interval:    mustInterval(t, start, end),
		Label:       "Room R1",
	}
}

func TestCheckAcceptsFreeSlot(t *testing.T) {
	occupants := []Occupant{
		occupant(t, "a", "09:00", "10:00"),
		occupant(t, "b", "11:00", "12:00"),
	}

	if c := Check(mustInterval(t, "10:00", "11:00"), occupants, ""); c != nil {
		t.Errorf("expected accept for slot touching both neighbours, got conflict with %s", c.Occupant.ID)
	}
}

func TestCheckReturnsFirstConflict(t *testing.T) {
	occupants := []Occupant{
		occupant(t, "a", "09:00", "10:00"),
		occupant(t, "b", "09:30", "11:00"),
	}

	c := Check(mustInterval(t, "09:45", "10:15"), occupants, "")
	if c == nil {
		t.Fatal("expected conflict")
	}
	if c.Occupant.ID != "a" {
		t.Errorf("expected first conflicting occupant 'a', got %q", c.Occupant.ID)
	}
}

func TestCheckExcludesSelfOnUpdate(t *testing.T) {
	occupants := []Occupant{
		occupant(t, "self", "09:00", "10:00"),
	}

	// Re-submitting an unchanged interval during update must not flag
	// the record against itself.
	if c := Check(mustInterval(t, "09:00", "10:00"), occupants, "self"); c != nil {
		t.Errorf("record conflicted with itself: %v", c)
	}

	// But it still conflicts with everyone else.
	occupants = append(occupants, occupant(t, "other", "09:30", "10:30"))
	if c := Check(mustInterval(t, "09:00", "10:00"), occupants, "self"); c == nil {
		t.Error("expected conflict with the other occupant")
	} else if c.Occupant.ID != "other" {
		t.Errorf("expected conflict with 'other', got %q", c.Occupant.ID)
	}
}

func TestCheckEmptyExcludeNeverSkips(t *testing.T) {
	// Occupants with empty IDs must still be considered when no
	// exclusion is requested.
	occupants := []Occupant{{
		ResourceKey: "room-r1",
		Day:         "Monday",
		Interval:    mustInterval(t, "09:00", "10:00"),
	}}

	if c := Check(mustInterval(t, "09:30", "10:30"), occupants, ""); c == nil {
		t.Error("expected conflict with anonymous occupant")
	}
}

func TestConflictErrorNamesScope(t *testing.T) {
	c := Check(mustInterval(t, "09:30", "10:30"), []Occupant{occupant(t, "a", "09:00", "10:00")}, "")
	if c == nil {
		t.Fatal("expected conflict")
	}
	want := "Room R1 is already allocated on Monday 09:00-10:00"
	if c.Error() != want {
		t.Errorf("Error() = %q, want %q", c.Error(), want)
	}
}
