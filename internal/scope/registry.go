package scope

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// Registry resolves role codes to their configured jurisdiction level.
// It is the single lookup path shared by all consumers; no controller derives
// a level on its own. Read-only at request time.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a new role-jurisdiction registry backed by the database.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// JurisdictionLevel returns the canonical jurisdiction level configured for
// the given role code.
//
// ErrRoleNotFound and ErrLevelNotConfigured are normal outcomes the caller
// must degrade to zero visibility; an unrecognized role must never default to
// unrestricted access.
func (r *Registry) JurisdictionLevel(roleCode string) (Level, error) {
	var role models.Role

	err := r.db.Select("jurisdiction_level").Where("code = ?", roleCode).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRoleNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to look up role %q: %w", roleCode, err)
	}

	level, ok := ParseLevel(role.JurisdictionLevel)
	if !ok {
		return "", ErrLevelNotConfigured
	}

	return level, nil
}
