package model

import "time"

// Resource is a schedulable unit: a restaurant table or a hotel room.
// The catalog side of the admin console owns these rows; the occupancy
// resolver only reads them.
type Resource struct {
	ID          int64  `gorm:"primaryKey"` // Upstream channel ID
	ZoneID      int64  `gorm:"index;not null"`
	Name        string `gorm:"size:256;not null"`
	Kind        string `gorm:"size:16;not null"` // "table" or "room"
	Capacity    int    `gorm:"not null"`
	Seq         int
	Active      bool   `gorm:"not null;default:true"`
	Window      string `gorm:"size:16;not null;default:both"` // day | night | both
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Associations
	Zone Zone `gorm:"constraint:OnDelete:CASCADE"`
}
