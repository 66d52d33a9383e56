package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"surrounding whitespace", "  lab demo  ", "lab demo"},
		{"collapses runs", "weekly   project\t\tmeeting", "weekly project meeting"},
		{"drops control chars", "guest\x00lecture\x1b", "guestlecture"},
		{"newlines become single space", "line one\n\nline two", "line one line two"},
		{"unicode preserved", "séminaire  réservé", "séminaire réservé"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TrimAndNormalize(tc.input); got != tc.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeDay(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"monday", "Monday"},
		{" MONDAY ", "Monday"},
		{"Tuesday", "Tuesday"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeDay(tc.input); got != tc.want {
			t.Errorf("NormalizeDay(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
