package occupancy

import "fmt"

// InputError marks data rejected at the ingestion boundary. Malformed
// intervals are rejected, never clamped, so they cannot reach the resolver.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// CheckInterval enforces the interval invariants the resolver relies on:
// a positive-length half-open range and a recognized reservation status.
func CheckInterval(iv Interval) error {
	if !Day(iv.End).After(Day(iv.Start)) {
		return &InputError{Reason: fmt.Sprintf(
			"interval %d: end %s is not after start %s",
			iv.ID, iv.End.Format("2006-01-02"), iv.Start.Format("2006-01-02"))}
	}
	switch iv.Status {
	case ReservationRequested, ReservationConfirmed, ReservationInProgress,
		ReservationCompleted, ReservationCancelled:
	default:
		return &InputError{Reason: fmt.Sprintf("interval %d: unknown reservation status %q", iv.ID, iv.Status)}
	}
	return nil
}

// CheckOverride enforces the override kind enum at the boundary.
func CheckOverride(ov Override) error {
	switch ov.Kind {
	case OverrideMaintenance, OverrideBlocked, OverrideManuallyOccupied:
		return nil
	default:
		return &InputError{Reason: fmt.Sprintf("override for resource %d: unknown kind %q", ov.ResourceID, ov.Kind)}
	}
}
