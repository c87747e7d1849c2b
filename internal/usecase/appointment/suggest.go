package appointment

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
)

const (
	defaultSuggestions = 3
	maxSuggestions     = 10
)

type SuggestInput struct {
	domain.AvailabilityInput

	// Around is a preferred "HH:MM"; empty means earliest first.
	Around string
	Limit  int
}

type Suggestion struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// SuggestTimes ranks the real free slots of a day by distance from a
// preferred time. The ranking is deterministic.
type SuggestTimes struct {
	availability *GetAvailability
}

func NewSuggestTimes(availability *GetAvailability) *SuggestTimes {
	return &SuggestTimes{availability: availability}
}

func (uc *SuggestTimes) Execute(
	ctx context.Context,
	in SuggestInput,
) ([]Suggestion, error) {

	limit := in.Limit
	if limit <= 0 {
		limit = defaultSuggestions
	}
	if limit > maxSuggestions {
		limit = maxSuggestions
	}

	var around *availability.Clock
	if in.Around != "" {
		c, err := availability.ParseClock(in.Around)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_around")
		}
		around = &c
	}

	day, err := uc.availability.free(ctx, in.AvailabilityInput)
	if err != nil {
		return nil, err
	}
	if day.closed || len(day.slots) == 0 {
		return []Suggestion{}, nil
	}

	ranked := slices.Clone(day.slots)
	if around != nil {
		target := around.On(day.date)
		slices.SortStableFunc(ranked, func(a, b availability.Slot) int {
			if c := cmp.Compare(distance(a.Start, target), distance(b.Start, target)); c != 0 {
				return c
			}
			return a.Start.Compare(b.Start)
		})
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Suggestion, 0, len(ranked))
	for i, s := range ranked {
		out = append(out, Suggestion{
			Start:  s.Start.In(day.loc).Format("15:04"),
			End:    s.End.In(day.loc).Format("15:04"),
			Reason: reason(i, s, around, day),
		})
	}
	return out, nil
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

func reason(rank int, s availability.Slot, around *availability.Clock, day *freeDay) string {
	if around == nil {
		if rank == 0 {
			return "Earliest available time"
		}
		return "Next available time"
	}

	target := around.On(day.date)
	switch {
	case s.Start.Equal(target):
		return fmt.Sprintf("Exactly at your preferred time (%s)", around)
	case s.Start.Before(target):
		return fmt.Sprintf("%s before your preferred time", humanize(target.Sub(s.Start)))
	default:
		return fmt.Sprintf("%s after your preferred time", humanize(s.Start.Sub(target)))
	}
}

func humanize(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02d", h, m)
	}
}
