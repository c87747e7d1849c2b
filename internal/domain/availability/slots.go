package availability

import (
	"iter"
	"time"
)

// Slot is a candidate [Start, End) booking interval. Slots are derived and
// never stored.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses the half-open test: [a,b) and [c,d) intersect iff a<d && c<b.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Generate yields the duration-wide slots of day, starting at opening time
// and stepping by duration, skipping those that touch a break. The sequence
// is lazy and can be ranged over more than once.
//
// day only contributes its calendar date and location. duration is
// truncated to whole minutes; a closed day or a duration shorter than a
// minute yields nothing. On daylight-saving transitions a slot whose wall
// times fall in the gap, or whose real length differs from duration, is
// skipped.
func Generate(day time.Time, hours DayHours, duration time.Duration) iter.Seq[Slot] {
	step := Clock(duration / time.Minute)
	width := time.Duration(step) * time.Minute

	return func(yield func(Slot) bool) {
		if !hours.IsOpen || step <= 0 {
			return
		}

		for cur := hours.Open; cur+step <= hours.Close; cur += step {
			if inBreak(hours.Breaks, cur, cur+step) {
				continue
			}

			start, ok := cur.at(day)
			if !ok {
				continue
			}
			end, ok := (cur + step).at(day)
			if !ok || end.Sub(start) != width {
				continue
			}

			if !yield(Slot{Start: start, End: end}) {
				return
			}
		}
	}
}

func inBreak(breaks []Interval, start, end Clock) bool {
	for _, b := range breaks {
		if b.overlaps(start, end) {
			return true
		}
	}
	return false
}
