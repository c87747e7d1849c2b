package availability

import (
	"iter"
	"slices"
	"time"
)

// Filter drops every slot that overlaps a busy interval. Order is kept.
func Filter(slots iter.Seq[Slot], busy []Slot) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for s := range slots {
			if overlapsAny(s, busy) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// NotBefore drops slots starting before cutoff.
func NotBefore(slots iter.Seq[Slot], cutoff time.Time) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for s := range slots {
			if s.Start.Before(cutoff) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Available returns the free slots of day in chronological order.
func Available(day time.Time, hours DayHours, duration time.Duration, busy []Slot) []Slot {
	return slices.Collect(Filter(Generate(day, hours, duration), busy))
}

// Contains reports whether want is one of the slots.
func Contains(slots iter.Seq[Slot], want Slot) bool {
	for s := range slots {
		if s.Start.Equal(want.Start) && s.End.Equal(want.End) {
			return true
		}
	}
	return false
}

func overlapsAny(s Slot, busy []Slot) bool {
	for _, b := range busy {
		if s.Overlaps(b) {
			return true
		}
	}
	return false
}
