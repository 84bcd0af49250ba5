package models

import (
	"time"

	"gorm.io/gorm"
)

// VisitStatus is the lifecycle state of a scheduled welfare visit.
type VisitStatus string

const (
	// VisitStatusScheduled marks a visit that is planned but not yet made.
	VisitStatusScheduled VisitStatus = "scheduled"
	// VisitStatusCompleted marks a visit the officer has completed.
	VisitStatusCompleted VisitStatus = "completed"
	// VisitStatusMissed marks a visit whose scheduled time passed unvisited.
	VisitStatusMissed VisitStatus = "missed"
	// VisitStatusCancelled marks a visit cancelled before it was due.
	VisitStatusCancelled VisitStatus = "cancelled"
)

// Visit is a scheduled welfare visit of an officer to a citizen.
// Beat and police station are denormalized from the citizen at scheduling time
// so scoped listings and compliance reports filter this table directly.
type Visit struct {
	// ID is the unique identifier for the visit.
	ID string `gorm:"primaryKey;size:36"`
	// CitizenID is the visited citizen.
	CitizenID string  `gorm:"size:36;not null;index"`
	Citizen   Citizen `gorm:"foreignKey:CitizenID"`
	// OfficerID is the officer making the visit.
	OfficerID string  `gorm:"size:36;not null;index"`
	Officer   Officer `gorm:"foreignKey:OfficerID"`

	// BeatID is the citizen's beat at scheduling time.
	BeatID *string `gorm:"size:36;index"`
	// PoliceStationID is the citizen's station at scheduling time.
	PoliceStationID *string `gorm:"size:36;index"`
	// SubDivisionID is the denormalized sub-division.
	SubDivisionID *string `gorm:"size:36;index"`
	// DistrictID is the denormalized district.
	DistrictID *string `gorm:"size:36;index"`
	// RangeID is the denormalized range.
	RangeID *string `gorm:"size:36;index"`

	// ScheduledAt is when the visit is due.
	ScheduledAt time.Time `gorm:"not null;index"`
	// CompletedAt is when the visit was made, nil until completion.
	CompletedAt *time.Time
	// Status is the visit lifecycle state.
	Status VisitStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`
	// Notes records the officer's observations from the visit.
	Notes     string `gorm:"size:1000"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Visit) TableName() string {
	return "visits"
}

// BeforeCreate assigns a generated id when none is provided.
func (v *Visit) BeforeCreate(_ *gorm.DB) error {
	if v.ID == "" {
		v.ID = newID()
	}

	return nil
}
