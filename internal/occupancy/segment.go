package occupancy

import "time"

// BuildSegments derives the calendar segments for one resource over the
// inclusive day window [from, to]. The returned segments partition the
// window exactly: no overlaps, no gaps, every day belongs to one segment.
// Consecutive days under the same reservation merge into a single segment;
// free days and override days stay one day wide, since gaps between stays
// are informative for rendering.
func BuildSegments(res Resource, from, to time.Time, snap *Snapshot) []Segment {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}

	if !res.Active {
		return []Segment{{
			ResourceID: res.ID,
			Kind:       SegmentUnavailable,
			Start:      from,
			End:        to,
		}}
	}

	var segments []Segment
	var open *Segment
	var openInterval Interval

	flush := func() {
		if open != nil {
			segments = append(segments, *open)
			open = nil
		}
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if ov, ok := snap.OverrideFor(res.ID, day); ok {
			flush()
			segments = append(segments, Segment{
				ResourceID:   res.ID,
				Kind:         SegmentOverride,
				OverrideKind: ov.Kind,
				Start:        day,
				End:          day,
			})
			continue
		}

		covering := snap.Covering(res.ID, day)
		if len(covering) == 0 {
			flush()
			segments = append(segments, Segment{
				ResourceID: res.ID,
				Kind:       SegmentFree,
				Start:      day,
				End:        day,
			})
			continue
		}

		iv := covering[0]
		if open != nil && openInterval.ID == iv.ID {
			open.End = day
			open.IsLastDay = day.Equal(iv.End.AddDate(0, 0, -1))
			continue
		}

		flush()
		id := iv.ID
		open = &Segment{
			ResourceID:    res.ID,
			ReservationID: &id,
			Kind:          SegmentReservation,
			Start:         day,
			End:           day,
			IsFirstDay:    day.Equal(iv.Start),
			IsLastDay:     day.Equal(iv.End.AddDate(0, 0, -1)),
		}
		openInterval = iv
	}
	flush()

	return segments
}
