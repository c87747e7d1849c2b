package availability

import (
	"testing"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

func TestParseClock(t *testing.T) {
	cases := map[string]Clock{"00:00": 0, "09:30": 570, "23:59": 1439, "24:00": 1440}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %d, want %d", in, got, want)
		}
		if in != "24:00" && got.String() != in {
			t.Fatalf("String() = %q, want %q", got.String(), in)
		}
	}

	for _, bad := range []string{"", "9", "25:00", "09:60", "nine"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestDayHoursValidate(t *testing.T) {
	cases := []struct {
		name   string
		open   string
		close  string
		breaks [][2]string
		code   string
	}{
		{"ok", "09:00", "18:00", [][2]string{{"12:00", "13:00"}, {"15:00", "15:15"}}, ""},
		{"open after close", "18:00", "09:00", nil, "invalid_operating_hours"},
		{"open equals close", "09:00", "09:00", nil, "invalid_operating_hours"},
		{"break outside", "09:00", "18:00", [][2]string{{"08:00", "09:30"}}, "invalid_break"},
		{"break past close", "09:00", "18:00", [][2]string{{"17:30", "18:30"}}, "invalid_break"},
		{"empty break", "09:00", "18:00", [][2]string{{"12:00", "12:00"}}, "invalid_break"},
		{"overlapping breaks", "09:00", "18:00", [][2]string{{"14:00", "15:00"}, {"12:00", "14:30"}}, "overlapping_breaks"},
		{"adjacent breaks", "09:00", "18:00", [][2]string{{"12:00", "13:00"}, {"13:00", "13:30"}}, ""},
	}

	for _, tc := range cases {
		_, err := ParseDayHours(2, true, tc.open, tc.close, tc.breaks)
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if !httperr.IsBusiness(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestDayHoursValidate_ClosedDay(t *testing.T) {
	h, err := ParseDayHours(0, false, "", "", nil)
	if err != nil {
		t.Fatalf("closed day should be valid: %v", err)
	}
	if h.IsOpen {
		t.Fatalf("expected closed day")
	}

	if err := (DayHours{Weekday: 7}).Validate(); !httperr.IsBusiness(err, "invalid_weekday") {
		t.Fatalf("expected invalid_weekday, got %v", err)
	}
}
