package availability

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

const endOfDay Clock = 24 * 60

// ParseClock parses "HH:MM". "24:00" is accepted as the end of the day.
func ParseClock(hm string) (Clock, error) {
	if hm == "24:00" {
		return endOfDay, nil
	}
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, httperr.ErrBusiness("invalid_time_format")
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On places the clock on day's calendar date, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}

// at is On restricted to wall times that exist exactly once on day: a clock
// inside a daylight-saving gap is normalised by time.Date to another hour
// and reported as not ok.
func (c Clock) at(day time.Time) (time.Time, bool) {
	t := c.On(day)
	if c == endOfDay {
		return t, t.Hour() == 0 && t.Minute() == 0
	}
	return t, Clock(t.Hour()*60+t.Minute()) == c
}
