package models

import (
	"time"

	"gorm.io/gorm"
)

// SOSStatus is the lifecycle state of a panic alert.
type SOSStatus string

const (
	// SOSStatusOpen marks a freshly raised, unhandled alert.
	SOSStatusOpen SOSStatus = "open"
	// SOSStatusAcknowledged marks an alert an officer is responding to.
	SOSStatusAcknowledged SOSStatus = "acknowledged"
	// SOSStatusResolved marks a closed alert.
	SOSStatusResolved SOSStatus = "resolved"
)

// SOSAlert is a panic alert raised by or on behalf of a citizen.
// Jurisdiction ids are denormalized from the citizen when the alert is raised.
type SOSAlert struct {
	// ID is the unique identifier for the alert.
	ID string `gorm:"primaryKey;size:36"`
	// Code is a short human-relayable reference (e.g., read out over phone).
	Code string `gorm:"unique;size:20;not null"`
	// CitizenID is the citizen in distress.
	CitizenID string  `gorm:"size:36;not null;index"`
	Citizen   Citizen `gorm:"foreignKey:CitizenID"`

	// BeatID is the citizen's beat when the alert was raised.
	BeatID *string `gorm:"size:36;index"`
	// PoliceStationID is the citizen's station when the alert was raised.
	PoliceStationID *string `gorm:"size:36;index"`
	// SubDivisionID is the denormalized sub-division.
	SubDivisionID *string `gorm:"size:36;index"`
	// DistrictID is the denormalized district.
	DistrictID *string `gorm:"size:36;index"`
	// RangeID is the denormalized range.
	RangeID *string `gorm:"size:36;index"`

	// Latitude of the alert origin, when the device supplied one.
	Latitude *float64
	// Longitude of the alert origin, when the device supplied one.
	Longitude *float64
	// Message is optional free text sent with the alert.
	Message string `gorm:"size:500"`

	// Status is the alert lifecycle state.
	Status SOSStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	// RaisedAt is when the alert was received.
	RaisedAt time.Time `gorm:"not null"`
	// AcknowledgedAt is when an officer took the alert, nil until then.
	AcknowledgedAt *time.Time
	// ResolvedAt is when the alert was closed, nil until then.
	ResolvedAt *time.Time
	// ResolvedByID is the user who closed the alert.
	ResolvedByID *uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (SOSAlert) TableName() string {
	return "sos_alerts"
}

// BeforeCreate assigns a generated id when none is provided.
func (s *SOSAlert) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}

	return nil
}
