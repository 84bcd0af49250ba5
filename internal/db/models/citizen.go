package models

import (
	"time"

	"gorm.io/gorm"
)

// CitizenStatus is the registration state of a senior citizen record.
type CitizenStatus string

const (
	// CitizenStatusPending marks a registration awaiting field verification.
	CitizenStatusPending CitizenStatus = "pending"
	// CitizenStatusVerified marks a verified, active citizen.
	CitizenStatusVerified CitizenStatus = "verified"
	// CitizenStatusInactive marks a citizen removed from the visit roster.
	CitizenStatusInactive CitizenStatus = "inactive"
)

// Citizen represents a registered senior citizen enrolled in the welfare program.
// Placement in the geographic hierarchy is denormalized across all five levels
// at registration so every scoped listing filters this table directly.
type Citizen struct {
	// ID is the unique identifier for the citizen.
	ID string `gorm:"primaryKey;size:36"`
	// Name is the citizen's full name.
	Name string `gorm:"size:150;not null"`
	// Phone is the unique contact number used for registration.
	Phone string `gorm:"unique;size:20;not null"`
	// DateOfBirth of the citizen.
	DateOfBirth *time.Time
	// Gender of the citizen.
	Gender string `gorm:"size:20"`
	// Address is the residential address.
	Address string `gorm:"size:255"`
	// LivesAlone indicates the citizen has no co-resident family.
	LivesAlone bool
	// EmergencyContact is a phone number of a relative or neighbour.
	EmergencyContact string `gorm:"size:20"`

	// BeatID is the beat covering the citizen's residence.
	BeatID *string `gorm:"size:36;index"`
	// PoliceStationID is the denormalized station of the beat.
	PoliceStationID *string `gorm:"size:36;index"`
	// SubDivisionID is the denormalized sub-division.
	SubDivisionID *string `gorm:"size:36;index"`
	// DistrictID is the denormalized district.
	DistrictID *string `gorm:"size:36;index"`
	// RangeID is the denormalized range.
	RangeID *string `gorm:"size:36;index"`

	// AssignedOfficerID is the beat officer responsible for welfare visits.
	AssignedOfficerID *string  `gorm:"size:36;index"`
	AssignedOfficer   *Officer `gorm:"foreignKey:AssignedOfficerID"`

	// Status is the registration state.
	Status    CitizenStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (zero if not deleted, managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides GORM's default pluralized table naming.
func (Citizen) TableName() string {
	return "citizens"
}

// BeforeCreate assigns a generated id when none is provided.
func (c *Citizen) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}

	return nil
}
