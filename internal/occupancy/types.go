package occupancy

import "time"

// Status is the resolved occupancy status of a resource at an instant.
// The set is closed: resolution never produces a value outside it.
type Status string

const (
	StatusFree        Status = "free"
	StatusReserved    Status = "reserved"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusBlocked     Status = "blocked"
	StatusUnavailable Status = "unavailable"
)

// ReservationStatus is the lifecycle state a booking channel reports for a
// reservation. Cancelled reservations are kept for audit but never count
// towards occupancy.
type ReservationStatus string

const (
	ReservationRequested  ReservationStatus = "requested"
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationInProgress ReservationStatus = "in_progress"
	ReservationCompleted  ReservationStatus = "completed"
	ReservationCancelled  ReservationStatus = "cancelled"
)

// OverrideKind is a manual per-day status entered by staff.
type OverrideKind string

const (
	OverrideMaintenance      OverrideKind = "maintenance"
	OverrideBlocked          OverrideKind = "blocked"
	OverrideManuallyOccupied OverrideKind = "manually_occupied"
)

// Granularity tells the resolver how to classify a covering reservation:
// tables are booked for a time of day, rooms are booked per night.
type Granularity string

const (
	GranularityIntraday Granularity = "intraday"
	GranularityMultiday Granularity = "multiday"
)

// ServiceWindow restricts which service periods a resource may be booked in.
type ServiceWindow string

const (
	WindowDay   ServiceWindow = "day"
	WindowNight ServiceWindow = "night"
	WindowBoth  ServiceWindow = "both"
)

// Resource is a schedulable unit (a table or a room). The catalog module
// owns these; the resolver only reads them.
type Resource struct {
	ID          int64
	Name        string
	Capacity    int
	Zone        string
	Active      bool
	Window      ServiceWindow
	Granularity Granularity
}

// Interval is a reservation's half-open date range [Start, End) on a
// resource. Start and End are midnight-UTC days; ScheduledAt carries the
// wall-clock time for intraday (table) reservations and is zero for rooms.
type Interval struct {
	ID          int64
	ResourceID  int64
	Start       time.Time
	End         time.Time
	ScheduledAt time.Time
	Status      ReservationStatus
	PartySize   int
	ClientRef   string
}

// Cancelled reports whether the interval no longer contributes to occupancy.
func (iv Interval) Cancelled() bool {
	return iv.Status == ReservationCancelled
}

// Covers reports whether the given day falls inside [Start, End).
// The end day itself is the checkout day and is not covered.
func (iv Interval) Covers(day time.Time) bool {
	return !day.Before(iv.Start) && day.Before(iv.End)
}

// Override is a manual status for a resource on a single day. It beats any
// reservation on that day.
type Override struct {
	ResourceID int64
	Day        time.Time
	Kind       OverrideKind
	Note       string
}

// Status maps an override kind onto the resolved status it produces.
func (k OverrideKind) Status() Status {
	switch k {
	case OverrideMaintenance:
		return StatusMaintenance
	case OverrideBlocked:
		return StatusBlocked
	default:
		return StatusOccupied
	}
}

// SourceKind identifies what produced a resolved status.
type SourceKind string

const (
	SourceNone        SourceKind = "none"
	SourceReservation SourceKind = "reservation"
	SourceOverride    SourceKind = "override"
)

// Result is the derived status of one resource at one instant.
// Conflict is set when more than one non-cancelled interval covers the
// instant; the earliest-starting interval is then reported as the source.
type Result struct {
	ResourceID int64
	At         time.Time
	Status     Status
	Source     SourceKind
	IntervalID int64
	Override   *Override
	Conflict   bool
}

// SegmentKind classifies a calendar segment for rendering.
type SegmentKind string

const (
	SegmentFree        SegmentKind = "free"
	SegmentReservation SegmentKind = "reservation"
	SegmentOverride    SegmentKind = "override"
	SegmentUnavailable SegmentKind = "unavailable"
)

// Segment is a contiguous run of days under one reservation (or one
// override, or free) inside a query window. Start and End are inclusive
// days, both clamped to the window. IsFirstDay and IsLastDay are anchored to
// the reservation's real boundaries, not the window edges.
type Segment struct {
	ResourceID    int64
	ReservationID *int64
	Kind          SegmentKind
	OverrideKind  OverrideKind
	Start         time.Time
	End           time.Time
	IsFirstDay    bool
	IsLastDay     bool
}

// Day normalizes an instant to its midnight-UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
