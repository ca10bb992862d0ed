package model

import "time"

// Reservation is a booking interval on a resource, mirrored from the
// booking channels. StartDate is inclusive, EndDate exclusive; for table
// bookings ScheduledAt additionally carries the wall-clock seating time.
// Cancelled rows are kept for audit and never deleted.
type Reservation struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	BookingRef  string     `gorm:"uniqueIndex;size:64;not null"` // channel reference, UUID when the feed omits one
	ResourceID  int64      `gorm:"index;not null"`
	StartDate   time.Time  `gorm:"not null;index"`
	EndDate     time.Time  `gorm:"not null"`
	ScheduledAt *time.Time
	Status      string `gorm:"size:32;not null"` // requested | confirmed | in_progress | completed | cancelled
	PartySize   int    `gorm:"not null"`
	ClientRef   string `gorm:"size:256"` // opaque display label
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Resource Resource `gorm:"constraint:OnDelete:CASCADE"`
}
