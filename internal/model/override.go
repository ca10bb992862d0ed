package model

import "time"

// OverrideEvent is a manual per-day status entered by staff through the
// floor plan or the room calendar. One row per resource and day.
type OverrideEvent struct {
	ResourceID int64     `gorm:"primaryKey;autoIncrement:false"`
	Date       time.Time `gorm:"primaryKey"`
	Kind       string    `gorm:"size:32;not null"` // maintenance | blocked | manually_occupied
	Note       string    `gorm:"size:512"`
	CreatedAt  time.Time `gorm:"not null"`

	// Associations
	Resource Resource `gorm:"constraint:OnDelete:CASCADE"`
}
