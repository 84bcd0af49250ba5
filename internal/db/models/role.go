package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles bundle a set of permissions with a jurisdiction level that bounds how
// much of the geographic hierarchy a holder of the role may see.
// Examples include "SUPER_ADMIN", "SHO" and "BEAT_OFFICER" roles.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Code is the unique role code referenced by users (e.g., "SHO", "CONSTABLE").
	Code string `gorm:"unique;size:50;not null"`
	// Name is the human readable name of the role (e.g., "Station House Officer").
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// JurisdictionLevel bounds visibility for holders of this role.
	// Stored as the raw configured string (e.g., "ALL", "DISTRICT", "SUB_DIVISION");
	// it is normalized at the scope registry boundary, never by consumers.
	JurisdictionLevel string `gorm:"size:30"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
