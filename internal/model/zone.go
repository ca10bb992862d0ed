package model

import "time"

// Zone groups resources for the floor plan and calendar views
// (e.g. "Terrace", "Main Hall", "West Wing").
type Zone struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Resources []Resource `gorm:"foreignKey:ZoneID"`
}
