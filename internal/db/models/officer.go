package models

import (
	"time"

	"gorm.io/gorm"
)

// Officer represents a police officer's jurisdictional placement.
// The five posting ids are all optional and populated according to the
// officer's actual posting: a constable typically has all five down to beat,
// an inspector may only be posted up to police-station level. The scope
// resolver maps a role's jurisdiction level to exactly one of these fields.
type Officer struct {
	// ID is the unique identifier for the officer profile.
	ID string `gorm:"primaryKey;size:36"`
	// BadgeNumber is the unique force badge number.
	BadgeNumber string `gorm:"unique;size:30;not null"`
	// Name is the officer's full name.
	Name string `gorm:"size:150;not null"`
	// Phone is the officer's contact number.
	Phone string `gorm:"size:20"`
	// DesignationID references the officer's rank master data.
	DesignationID uint        `gorm:"index"`
	Designation   Designation `gorm:"foreignKey:DesignationID"`

	// RangeID is the posted range, if any.
	RangeID *string `gorm:"size:36;index"`
	// DistrictID is the posted district, if any.
	DistrictID *string `gorm:"size:36;index"`
	// SubDivisionID is the posted sub-division, if any.
	SubDivisionID *string `gorm:"size:36;index"`
	// PoliceStationID is the posted police station, if any.
	PoliceStationID *string `gorm:"size:36;index"`
	// BeatID is the assigned beat, if any. Beat officers without an assigned
	// beat resolve to the unassigned sentinel and see nothing.
	BeatID *string `gorm:"size:36;index"`

	// Active indicates whether the officer is in active service.
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (zero if not deleted, managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides GORM's default pluralized table naming.
func (Officer) TableName() string {
	return "officers"
}

// BeforeCreate assigns a generated id when none is provided.
func (o *Officer) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}

	return nil
}
