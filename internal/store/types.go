package store

import "time"

// FeedItem represents a single reservation record from a booking-channel
// feed. Each item carries enough resource metadata to keep the catalog in
// sync, the way channels denormalize their exports.
type FeedItem struct {
	BookingRef    string  `json:"bookingRef"`
	UnitID        int64   `json:"unitId"`
	UnitLabel     string  `json:"unitLabel"`
	UnitType      string  `json:"unitType"` // "table" or "room"
	ZoneName      string  `json:"zoneName"`
	Status        int     `json:"status"` // raw channel status code
	PartySize     int     `json:"partySize"`
	ClientName    string  `json:"clientName"`
	StartDate     string  `json:"startDate"`     // "2006-01-02", inclusive
	EndDate       string  `json:"endDate"`       // "2006-01-02", exclusive
	ScheduledTime *string `json:"scheduledTime"` // "2006-01-02 15:04:05", tables only

	// Parsed by the ingest layer before the item reaches the store.
	StartParsed     time.Time  `json:"-"`
	EndParsed       time.Time  `json:"-"`
	ScheduledParsed *time.Time `json:"-"`
}
