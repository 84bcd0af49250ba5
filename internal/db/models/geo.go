package models

import (
	"time"

	"gorm.io/gorm"
)

// The geographic hierarchy mirrors the force structure top-down:
// Range -> District -> SubDivision -> PoliceStation -> Beat.
// Beat additionally denormalizes its ancestor ids so that scoped queries can
// filter on a single table without joins.

// Range is the top level of the geographic hierarchy.
type Range struct {
	// ID is the unique identifier for the range.
	ID string `gorm:"primaryKey;size:36"`
	// Code is the short unique range code (e.g., "RNG-N").
	Code string `gorm:"unique;size:30;not null"`
	// Name is the display name of the range.
	Name string `gorm:"size:150;not null"`
	// Active indicates whether the range is in service.
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Range) TableName() string {
	return "ranges"
}

// BeforeCreate assigns a generated id when none is provided.
func (r *Range) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}

	return nil
}

// District belongs to a Range.
type District struct {
	ID   string `gorm:"primaryKey;size:36"`
	Code string `gorm:"unique;size:30;not null"`
	Name string `gorm:"size:150;not null"`
	// RangeID is the parent range.
	RangeID   string `gorm:"size:36;not null;index"`
	Range     Range  `gorm:"foreignKey:RangeID"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (District) TableName() string {
	return "districts"
}

// BeforeCreate assigns a generated id when none is provided.
func (d *District) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = newID()
	}

	return nil
}

// SubDivision belongs to a District.
type SubDivision struct {
	ID   string `gorm:"primaryKey;size:36"`
	Code string `gorm:"unique;size:30;not null"`
	Name string `gorm:"size:150;not null"`
	// DistrictID is the parent district.
	DistrictID string   `gorm:"size:36;not null;index"`
	District   District `gorm:"foreignKey:DistrictID"`
	Active     bool     `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (SubDivision) TableName() string {
	return "sub_divisions"
}

// BeforeCreate assigns a generated id when none is provided.
func (s *SubDivision) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}

	return nil
}

// PoliceStation belongs to a SubDivision.
type PoliceStation struct {
	ID   string `gorm:"primaryKey;size:36"`
	Code string `gorm:"unique;size:30;not null"`
	Name string `gorm:"size:150;not null"`
	// SubDivisionID is the parent sub-division.
	SubDivisionID string      `gorm:"size:36;not null;index"`
	SubDivision   SubDivision `gorm:"foreignKey:SubDivisionID"`
	// Address is the station's postal address.
	Address string `gorm:"size:255"`
	// Phone is the station's contact number.
	Phone     string `gorm:"size:20"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (PoliceStation) TableName() string {
	return "police_stations"
}

// BeforeCreate assigns a generated id when none is provided.
func (p *PoliceStation) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}

	return nil
}

// Beat is the smallest patrol unit and belongs to a PoliceStation.
// The ancestor ids are denormalized on write so scoped listings at any
// jurisdiction level filter this table directly.
type Beat struct {
	ID   string `gorm:"primaryKey;size:36"`
	Code string `gorm:"unique;size:30;not null"`
	Name string `gorm:"size:150;not null"`
	// BeatNumber is the force-assigned beat number within the station.
	BeatNumber string `gorm:"size:30"`
	// PoliceStationID is the parent police station.
	PoliceStationID string        `gorm:"size:36;not null;index"`
	PoliceStation   PoliceStation `gorm:"foreignKey:PoliceStationID"`
	// SubDivisionID is the denormalized grand-parent sub-division.
	SubDivisionID string `gorm:"size:36;index"`
	// DistrictID is the denormalized ancestor district.
	DistrictID string `gorm:"size:36;index"`
	// RangeID is the denormalized ancestor range.
	RangeID string `gorm:"size:36;index"`
	// Description is a free-form description of the beat area.
	Description string `gorm:"size:255"`
	Active      bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (Beat) TableName() string {
	return "beats"
}

// BeforeCreate assigns a generated id when none is provided.
func (b *Beat) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = newID()
	}

	return nil
}
