package booking

import (
	"sort"
	"time"

	"societyhub/internal/domain"
)

// subtractBusy returns the gaps of [open, close) not covered by busy.
func subtractBusy(open, close time.Time, busy []domain.Interval) []domain.Interval {
	if len(busy) == 0 {
		return []domain.Interval{{Start: open, End: close}}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := make([]domain.Interval, 0, len(busy))
	for _, s := range busy {
		if !s.End.After(open) || !s.Start.Before(close) {
			continue
		}
		if s.Start.Before(open) {
			s.Start = open
		}
		if s.End.After(close) {
			s.End = close
		}

		if len(merged) == 0 {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}

	cur := open
	out := make([]domain.Interval, 0, len(merged)+1)
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, domain.Interval{Start: cur, End: b.Start})
		}
		if b.End.After(cur) {
			cur = b.End
		}
	}
	if cur.Before(close) {
		out = append(out, domain.Interval{Start: cur, End: close})
	}
	return out
}
