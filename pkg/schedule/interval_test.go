package schedule

import "testing"

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	iv, err := ParseInterval(start, end)
	if err != nil {
		t.Fatalf("ParseInterval(%s, %s): %v", start, end, err)
	}
	return iv
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input   string
		want    ClockMinutes
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"0930", 0, true},
		{"", 0, true},
		{"09:30:00", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %v", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestClockMinutesString(t *testing.T) {
	if got := ClockMinutes(570).String(); got != "09:30" {
		t.Errorf("String() = %q, want 09:30", got)
	}
	if got := ClockMinutes(0).String(); got != "00:00" {
		t.Errorf("String() = %q, want 00:00", got)
	}
}

func TestNewIntervalRejectsInvertedRanges(t *testing.T) {
	if _, err := NewInterval(600, 600); err == nil {
		t.Error("empty interval must be rejected")
	}
	if _, err := NewInterval(700, 600); err == nil {
		t.Error("inverted interval must be rejected")
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a    [2]string
		b    [2]string
		want bool
	}{
		{"partial overlap", [2]string{"10:00", "12:00"}, [2]string{"11:00", "13:00"}, true},
		{"touching boundary is free", [2]string{"10:00", "12:00"}, [2]string{"12:00", "14:00"}, false},
		{"touching boundary reversed", [2]string{"12:00", "14:00"}, [2]string{"10:00", "12:00"}, false},
		{"identical", [2]string{"09:00", "10:00"}, [2]string{"09:00", "10:00"}, true},
		{"containment", [2]string{"09:00", "17:00"}, [2]string{"10:00", "11:00"}, true},
		{"disjoint", [2]string{"08:00", "09:00"}, [2]string{"13:00", "14:00"}, false},
		{"one minute overlap", [2]string{"09:00", "10:01"}, [2]string{"10:00", "11:00"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := mustInterval(t, tc.a[0], tc.a[1])
			b := mustInterval(t, tc.b[0], tc.b[1])
			if got := Overlaps(a, b); got != tc.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", a, b, got, tc.want)
			}
			// The rule is symmetric.
			if got := Overlaps(b, a); got != tc.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", b, a, got, tc.want)
			}
		})
	}
}
