package occupancy

import (
	"sort"
	"time"
)

type overrideKey struct {
	resourceID int64
	day        time.Time
}

// Snapshot is an immutable view of the reservation and override data the
// resolver works on. Callers build a fresh one per query round; the
// resolution functions never mutate it, so results are reproducible for as
// long as the snapshot is held.
type Snapshot struct {
	intervals map[int64][]Interval
	overrides map[overrideKey]Override
}

// NewSnapshot indexes the given collections for resolution. Intervals are
// grouped per resource and sorted by start day, then id, which fixes the
// authoritative interval for conflicting (double-booked) days. The inputs
// are expected to have passed the ingestion boundary already; see
// CheckInterval.
func NewSnapshot(intervals []Interval, overrides []Override) *Snapshot {
	s := &Snapshot{
		intervals: make(map[int64][]Interval),
		overrides: make(map[overrideKey]Override, len(overrides)),
	}
	for _, iv := range intervals {
		iv.Start = Day(iv.Start)
		iv.End = Day(iv.End)
		s.intervals[iv.ResourceID] = append(s.intervals[iv.ResourceID], iv)
	}
	for id := range s.intervals {
		ivs := s.intervals[id]
		sort.Slice(ivs, func(i, j int) bool {
			if !ivs[i].Start.Equal(ivs[j].Start) {
				return ivs[i].Start.Before(ivs[j].Start)
			}
			return ivs[i].ID < ivs[j].ID
		})
	}
	for _, ov := range overrides {
		ov.Day = Day(ov.Day)
		s.overrides[overrideKey{ov.ResourceID, ov.Day}] = ov
	}
	return s
}

// OverrideFor returns the override for a resource on a day, if any.
func (s *Snapshot) OverrideFor(resourceID int64, day time.Time) (Override, bool) {
	ov, ok := s.overrides[overrideKey{resourceID, Day(day)}]
	return ov, ok
}

// Covering returns every non-cancelled interval of the resource whose
// [start, end) contains the day, in start order. More than one entry means
// the resource is double-booked on that day.
func (s *Snapshot) Covering(resourceID int64, day time.Time) []Interval {
	day = Day(day)
	var out []Interval
	for _, iv := range s.intervals[resourceID] {
		if day.Before(iv.Start) {
			break
		}
		if iv.Cancelled() || !iv.Covers(day) {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Intervals returns the resource's non-cancelled intervals in start order.
func (s *Snapshot) Intervals(resourceID int64) []Interval {
	var out []Interval
	for _, iv := range s.intervals[resourceID] {
		if iv.Cancelled() {
			continue
		}
		out = append(out, iv)
	}
	return out
}
