package occupancy

import "time"

// DefaultProximity is the window around a table reservation's scheduled
// time within which an in-progress party counts as seated.
const DefaultProximity = 2 * time.Hour

// Resolver derives a single deterministic status for a resource at an
// instant. It is a pure function of its inputs: the caller threads the query
// instant in explicitly and repeated calls over the same snapshot always
// return identical results.
type Resolver struct {
	// Proximity widens or narrows the seated-detection window for intraday
	// resources. Zero means DefaultProximity.
	Proximity time.Duration

	// Location maps instants onto calendar days. Nil means UTC.
	Location *time.Location
}

func (r *Resolver) proximity() time.Duration {
	if r.Proximity > 0 {
		return r.Proximity
	}
	return DefaultProximity
}

func (r *Resolver) dayOf(at time.Time) time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := at.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolve returns the occupancy status of the resource at the given
// instant. Precedence, first match wins: inactive resource, manual
// override, covering reservations, free. A double-booked day is reported
// with Conflict set and the earliest-starting interval as the source; the
// extra bookings are never silently dropped.
func (r *Resolver) Resolve(res Resource, at time.Time, snap *Snapshot) Result {
	out := Result{ResourceID: res.ID, At: at, Status: StatusFree, Source: SourceNone}

	if !res.Active {
		out.Status = StatusUnavailable
		return out
	}

	day := r.dayOf(at)
	if ov, ok := snap.OverrideFor(res.ID, day); ok {
		out.Status = ov.Kind.Status()
		out.Source = SourceOverride
		out.Override = &ov
		return out
	}

	covering := snap.Covering(res.ID, day)
	if len(covering) == 0 {
		return out
	}

	iv := covering[0]
	out.Source = SourceReservation
	out.IntervalID = iv.ID
	out.Conflict = len(covering) > 1
	out.Status = r.classify(res, iv, at)
	return out
}

// classify maps a single covering reservation onto reserved or occupied.
// Rooms are reserved for every night of the stay; the checkout day never
// reaches here because the end day is exclusive. Tables flip to occupied
// only when the party is in progress near its scheduled time.
func (r *Resolver) classify(res Resource, iv Interval, at time.Time) Status {
	if res.Granularity != GranularityIntraday {
		return StatusReserved
	}
	if iv.Status == ReservationInProgress && !iv.ScheduledAt.IsZero() {
		diff := at.Sub(iv.ScheduledAt)
		if diff < 0 {
			diff = -diff
		}
		if diff <= r.proximity() {
			return StatusOccupied
		}
	}
	return StatusReserved
}
