package models

import "time"

// Designation is master data for officer ranks (e.g., "Inspector", "Constable").
type Designation struct {
	// ID is the unique identifier for the designation.
	ID uint `gorm:"primaryKey"`
	// Name is the unique designation name.
	Name string `gorm:"unique;size:100;not null"`
	// RankOrder orders designations from senior (low) to junior (high).
	RankOrder int `gorm:"default:0"`
	// Active indicates whether the designation can still be assigned.
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Designation) TableName() string {
	return "designations"
}
