package availability

import (
	"slices"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

// Interval is a half-open clock range [Start, End).
type Interval struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func (i Interval) overlaps(start, end Clock) bool {
	return i.Start < end && start < i.End
}

// DayHours is the validated schedule of one weekday.
type DayHours struct {
	Weekday int
	IsOpen  bool
	Open    Clock
	Close   Clock
	Breaks  []Interval
}

// Validate checks open < close, every break inside [open, close) and
// breaks pairwise disjoint. A closed day is always valid.
func (h DayHours) Validate() error {
	if h.Weekday < 0 || h.Weekday > 6 {
		return httperr.ErrBusiness("invalid_weekday")
	}
	if !h.IsOpen {
		return nil
	}
	if h.Open < 0 || h.Close > endOfDay || h.Open >= h.Close {
		return httperr.ErrBusiness("invalid_operating_hours")
	}

	breaks := slices.Clone(h.Breaks)
	slices.SortFunc(breaks, func(a, b Interval) int { return int(a.Start - b.Start) })

	for i, b := range breaks {
		if b.Start >= b.End || b.Start < h.Open || b.End > h.Close {
			return httperr.ErrBusiness("invalid_break")
		}
		if i > 0 && breaks[i-1].End > b.Start {
			return httperr.ErrBusiness("overlapping_breaks")
		}
	}
	return nil
}

// ParseDayHours builds DayHours from "HH:MM" strings and validates it.
func ParseDayHours(weekday int, isOpen bool, open, close string, breaks [][2]string) (DayHours, error) {
	h := DayHours{Weekday: weekday, IsOpen: isOpen}
	if !isOpen {
		return h, h.Validate()
	}

	var err error
	if h.Open, err = ParseClock(open); err != nil {
		return DayHours{}, err
	}
	if h.Close, err = ParseClock(close); err != nil {
		return DayHours{}, err
	}

	for _, b := range breaks {
		start, err := ParseClock(b[0])
		if err != nil {
			return DayHours{}, err
		}
		end, err := ParseClock(b[1])
		if err != nil {
			return DayHours{}, err
		}
		h.Breaks = append(h.Breaks, Interval{Start: start, End: end})
	}

	if err := h.Validate(); err != nil {
		return DayHours{}, err
	}
	return h, nil
}
