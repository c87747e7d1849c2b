package timezone

import (
	"sync"
	"time"
	// Embedded zone database; slim containers ship without /usr/share/zoneinfo.
	_ "time/tzdata"
)

var (
	mu              sync.RWMutex
	defaultTimezone = "America/Sao_Paulo"
)

// SetDefault changes the zone used for businesses without a valid timezone.
func SetDefault(tz string) {
	if !IsValid(tz) {
		return
	}
	mu.Lock()
	defaultTimezone = tz
	mu.Unlock()
}

func Default() string {
	mu.RLock()
	defer mu.RUnlock()
	return defaultTimezone
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); tz != "" && err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(Default()); err == nil {
		return loc
	}
	return time.UTC
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// StartOfDay returns local midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey formats the local calendar date used to scope booking locks.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", date, loc)
}

func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
}
