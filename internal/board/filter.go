package board

import (
	"math/rand"
	"sort"
	"time"

	"cboard-backend/internal/model"
)

const week = 7 * 24 * time.Hour

// dated pairs a flyer with its parsed end date.
type dated struct {
	flyer model.Flyer
	end   time.Time
}

// Filter classifies flyers by their end date relative to a point in time.
// Flyers with an unparseable end date are reported to OnInvalid and left out
// of every view.
type Filter struct {
	Location  *time.Location
	OnInvalid func(f model.Flyer, err error)
}

func (f Filter) parse(flyers []model.Flyer) []dated {
	out := make([]dated, 0, len(flyers))
	for _, fl := range flyers {
		end, err := fl.End(f.Location)
		if err != nil {
			if f.OnInvalid != nil {
				f.OnInvalid(fl, err)
			}
			continue
		}
		out = append(out, dated{flyer: fl, end: end})
	}
	return out
}

func (f Filter) selectSorted(flyers []model.Flyer, keep func(end time.Time) bool, newestFirst bool) []model.Flyer {
	var matched []dated
	for _, d := range f.parse(flyers) {
		if keep(d.end) {
			matched = append(matched, d)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if newestFirst {
			return matched[i].end.After(matched[j].end)
		}
		return matched[i].end.Before(matched[j].end)
	})

	out := make([]model.Flyer, len(matched))
	for i, d := range matched {
		out[i] = d.flyer
	}
	return out
}

// Upcoming returns flyers ending after now, soonest first.
func (f Filter) Upcoming(flyers []model.Flyer, now time.Time) []model.Flyer {
	return f.selectSorted(flyers, func(end time.Time) bool {
		return end.After(now)
	}, false)
}

// Past returns flyers that ended before now, most recent first.
func (f Filter) Past(flyers []model.Flyer, now time.Time) []model.Flyer {
	return f.selectSorted(flyers, func(end time.Time) bool {
		return end.Before(now)
	}, true)
}

// Weekly returns flyers ending within the next seven days, soonest first.
func (f Filter) Weekly(flyers []model.Flyer, now time.Time) []model.Flyer {
	return f.selectSorted(flyers, func(end time.Time) bool {
		d := end.Sub(now)
		return d >= 0 && d < week
	}, false)
}

// Daily returns flyers that have not ended yet and end today, soonest first.
func (f Filter) Daily(flyers []model.Flyer, now time.Time) []model.Flyer {
	local := now
	if f.Location != nil {
		local = now.In(f.Location)
	}
	y, m, d := local.Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, local.Location())

	return f.selectSorted(flyers, func(end time.Time) bool {
		return !end.Before(now) && end.Before(tomorrow)
	}, false)
}

// Sample returns n distinct flyers picked at random, or all of them in random
// order when there are fewer than n.
func Sample(flyers []model.Flyer, n int, rng *rand.Rand) []model.Flyer {
	if n > len(flyers) {
		n = len(flyers)
	}
	out := make([]model.Flyer, 0, n)
	for _, i := range rng.Perm(len(flyers))[:n] {
		out = append(out, flyers[i])
	}
	return out
}
