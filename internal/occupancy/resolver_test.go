package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func table(id int64) Resource {
	return Resource{ID: id, Name: "Table", Capacity: 4, Zone: "main", Active: true, Window: WindowBoth, Granularity: GranularityIntraday}
}

func room(id int64) Resource {
	return Resource{ID: id, Name: "Room", Capacity: 2, Zone: "west", Active: true, Window: WindowBoth, Granularity: GranularityMultiday}
}

func TestResolve_InactiveResourceDominates(t *testing.T) {
	res := room(1)
	res.Active = false

	snap := NewSnapshot(
		[]Interval{{ID: 10, ResourceID: 1, Start: d(2024, 3, 10), End: d(2024, 3, 13), Status: ReservationConfirmed}},
		[]Override{{ResourceID: 1, Day: d(2024, 3, 11), Kind: OverrideMaintenance}},
	)
	r := &Resolver{}

	for _, day := range []time.Time{d(2024, 3, 9), d(2024, 3, 11), d(2024, 3, 13)} {
		result := r.Resolve(res, day, snap)
		assert.Equal(t, StatusUnavailable, result.Status)
		assert.Equal(t, SourceNone, result.Source)
		assert.False(t, result.Conflict)
	}
}

func TestResolve_OverrideBeatsReservation(t *testing.T) {
	snap := NewSnapshot(
		[]Interval{{ID: 10, ResourceID: 1, Start: d(2024, 3, 10), End: d(2024, 3, 13), Status: ReservationConfirmed}},
		[]Override{
			{ResourceID: 1, Day: d(2024, 3, 11), Kind: OverrideMaintenance, Note: "deep clean"},
			{ResourceID: 1, Day: d(2024, 3, 12), Kind: OverrideBlocked},
			{ResourceID: 1, Day: d(2024, 3, 14), Kind: OverrideManuallyOccupied},
		},
	)
	r := &Resolver{}

	testCases := []struct {
		name     string
		day      time.Time
		expected Status
		source   SourceKind
	}{
		{"maintenance override inside stay", d(2024, 3, 11), StatusMaintenance, SourceOverride},
		{"blocked override inside stay", d(2024, 3, 12), StatusBlocked, SourceOverride},
		{"manual occupied on a free day", d(2024, 3, 14), StatusOccupied, SourceOverride},
		{"no override falls through to stay", d(2024, 3, 10), StatusReserved, SourceReservation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Resolve(room(1), tc.day, snap)
			assert.Equal(t, tc.expected, result.Status)
			assert.Equal(t, tc.source, result.Source)
			if tc.source == SourceOverride {
				require.NotNil(t, result.Override)
				assert.Equal(t, tc.day, result.Override.Day)
			}
		})
	}
}

func TestResolve_EndDayIsExclusive(t *testing.T) {
	snap := NewSnapshot(
		[]Interval{{ID: 10, ResourceID: 1, Start: d(2024, 3, 10), End: d(2024, 3, 13), Status: ReservationConfirmed}},
		nil,
	)
	r := &Resolver{}

	assert.Equal(t, StatusReserved, r.Resolve(room(1), d(2024, 3, 11), snap).Status)
	// Checkout day: the room is bookable again.
	assert.Equal(t, StatusFree, r.Resolve(room(1), d(2024, 3, 13), snap).Status)
	assert.Equal(t, StatusFree, r.Resolve(room(1), d(2024, 3, 9), snap).Status)
}

func TestResolve_CancelledNeverCounts(t *testing.T) {
	snap := NewSnapshot(
		[]Interval{{ID: 10, ResourceID: 1, Start: d(2024, 3, 10), End: d(2024, 3, 13), Status: ReservationCancelled}},
		nil,
	)
	r := &Resolver{}

	result := r.Resolve(room(1), d(2024, 3, 11), snap)
	assert.Equal(t, StatusFree, result.Status)
	assert.Equal(t, SourceNone, result.Source)
	assert.Zero(t, result.IntervalID)
}

func TestResolve_TableProximityWindow(t *testing.T) {
	// Table 5, booked for 20:00 the same day.
	mkSnap := func(status ReservationStatus) *Snapshot {
		return NewSnapshot([]Interval{{
			ID:          42,
			ResourceID:  5,
			Start:       d(2024, 7, 1),
			End:         d(2024, 7, 2),
			ScheduledAt: at(2024, 7, 1, 20, 0),
			Status:      status,
			PartySize:   4,
		}}, nil)
	}
	r := &Resolver{}

	// 19:30, party not yet arrived: booked for later today.
	result := r.Resolve(table(5), at(2024, 7, 1, 19, 30), mkSnap(ReservationConfirmed))
	assert.Equal(t, StatusReserved, result.Status)

	// 20:15 with the party seated.
	result = r.Resolve(table(5), at(2024, 7, 1, 20, 15), mkSnap(ReservationInProgress))
	assert.Equal(t, StatusOccupied, result.Status)

	// In progress but queried far outside the proximity window.
	result = r.Resolve(table(5), at(2024, 7, 1, 9, 0), mkSnap(ReservationInProgress))
	assert.Equal(t, StatusReserved, result.Status)

	// The next day the table is free again.
	result = r.Resolve(table(5), at(2024, 7, 2, 20, 0), mkSnap(ReservationInProgress))
	assert.Equal(t, StatusFree, result.Status)
}

func TestResolve_CustomProximity(t *testing.T) {
	snap := NewSnapshot([]Interval{{
		ID:          42,
		ResourceID:  5,
		Start:       d(2024, 7, 1),
		End:         d(2024, 7, 2),
		ScheduledAt: at(2024, 7, 1, 20, 0),
		Status:      ReservationInProgress,
	}}, nil)

	tight := &Resolver{Proximity: 30 * time.Minute}
	assert.Equal(t, StatusOccupied, tight.Resolve(table(5), at(2024, 7, 1, 20, 15), snap).Status)
	assert.Equal(t, StatusReserved, tight.Resolve(table(5), at(2024, 7, 1, 21, 0), snap).Status)
}

func TestResolve_ConflictVisible(t *testing.T) {
	snap := NewSnapshot([]Interval{
		{ID: 20, ResourceID: 1, Start: d(2024, 5, 30), End: d(2024, 6, 3), Status: ReservationConfirmed},
		{ID: 21, ResourceID: 1, Start: d(2024, 6, 1), End: d(2024, 6, 2), Status: ReservationRequested},
	}, nil)
	r := &Resolver{}

	result := r.Resolve(room(1), d(2024, 6, 1), snap)
	assert.True(t, result.Conflict, "double-booked day must be flagged")
	assert.Equal(t, int64(20), result.IntervalID, "earliest-starting interval is authoritative")
	assert.Equal(t, StatusReserved, result.Status)

	// Outside the overlap the flag drops again.
	result = r.Resolve(room(1), d(2024, 6, 2), snap)
	assert.False(t, result.Conflict)
	assert.Equal(t, int64(20), result.IntervalID)
}

func TestResolve_ConflictTreatsCancelledAsAbsent(t *testing.T) {
	snap := NewSnapshot([]Interval{
		{ID: 20, ResourceID: 1, Start: d(2024, 6, 1), End: d(2024, 6, 2), Status: ReservationCancelled},
		{ID: 21, ResourceID: 1, Start: d(2024, 6, 1), End: d(2024, 6, 2), Status: ReservationConfirmed},
	}, nil)
	r := &Resolver{}

	result := r.Resolve(room(1), d(2024, 6, 1), snap)
	assert.False(t, result.Conflict)
	assert.Equal(t, int64(21), result.IntervalID)
}

func TestResolve_Idempotent(t *testing.T) {
	snap := NewSnapshot([]Interval{
		{ID: 20, ResourceID: 1, Start: d(2024, 6, 1), End: d(2024, 6, 5), Status: ReservationConfirmed},
		{ID: 21, ResourceID: 1, Start: d(2024, 6, 2), End: d(2024, 6, 4), Status: ReservationConfirmed},
	}, []Override{{ResourceID: 1, Day: d(2024, 6, 4), Kind: OverrideBlocked}})
	r := &Resolver{}

	first := r.Resolve(room(1), d(2024, 6, 2), snap)
	second := r.Resolve(room(1), d(2024, 6, 2), snap)
	assert.Equal(t, first, second)
}

func TestResolve_TimezoneDayMapping(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	snap := NewSnapshot([]Interval{
		{ID: 30, ResourceID: 1, Start: d(2024, 7, 2), End: d(2024, 7, 3), Status: ReservationConfirmed},
	}, nil)

	// 2024-07-01T23:00Z is already July 2nd in Shanghai.
	instant := at(2024, 7, 1, 23, 0)
	utc := &Resolver{}
	local := &Resolver{Location: loc}

	assert.Equal(t, StatusFree, utc.Resolve(room(1), instant, snap).Status)
	assert.Equal(t, StatusReserved, local.Resolve(room(1), instant, snap).Status)
}

func TestCheckInterval(t *testing.T) {
	testCases := []struct {
		name      string
		interval  Interval
		expectErr bool
	}{
		{
			name:     "valid one-night stay",
			interval: Interval{ID: 1, Start: d(2024, 3, 10), End: d(2024, 3, 11), Status: ReservationConfirmed},
		},
		{
			name:      "zero-length range rejected",
			interval:  Interval{ID: 2, Start: d(2024, 3, 10), End: d(2024, 3, 10), Status: ReservationConfirmed},
			expectErr: true,
		},
		{
			name:      "inverted range rejected",
			interval:  Interval{ID: 3, Start: d(2024, 3, 12), End: d(2024, 3, 10), Status: ReservationConfirmed},
			expectErr: true,
		},
		{
			name:      "unknown status rejected",
			interval:  Interval{ID: 4, Start: d(2024, 3, 10), End: d(2024, 3, 11), Status: "tentative"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckInterval(tc.interval)
			if tc.expectErr {
				var inputErr *InputError
				require.ErrorAs(t, err, &inputErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckOverride(t *testing.T) {
	assert.NoError(t, CheckOverride(Override{ResourceID: 1, Kind: OverrideBlocked}))
	assert.Error(t, CheckOverride(Override{ResourceID: 1, Kind: "closed"}))
}
