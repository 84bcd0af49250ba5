package scope

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// RoleCitizen is the role code of citizen-facing accounts. Citizens never get
// jurisdiction-wide listing access through scope resolution; their own-record
// access is a separate authorization concern.
const RoleCitizen = "CITIZEN"

// Principal is the already-authenticated identity scope resolution runs for.
type Principal struct {
	// RoleCode is the principal's role code, empty for unauthenticated paths.
	RoleCode string
	// OfficerID references the principal's officer profile, nil when no
	// profile is linked.
	OfficerID *string
}

// Resolver produces exactly one DataScope per request principal.
type Resolver struct {
	db       *gorm.DB
	registry *Registry
}

// NewResolver creates a scope resolver over the given registry.
func NewResolver(db *gorm.DB, registry *Registry) *Resolver {
	return &Resolver{db: db, registry: registry}
}

// Resolve maps the principal's role and officer profile to a DataScope.
//
// The rules are priority ordered, first match wins:
//
//  1. no role               -> nil scope, caller applies no restriction
//  2. unknown/unconfigured  -> denied (fail closed)
//  3. level ALL             -> unrestricted
//  4. citizen role or NONE  -> denied
//  5. no linked profile     -> denied (not provisioned is not a fault)
//  6. dangling profile ref  -> ErrOfficerProfileMissing (integrity fault, reject)
//  7. otherwise             -> level plus the one matching posting id
//
// The returned scope is never cached; postings can change between requests.
func (r *Resolver) Resolve(p Principal) (*DataScope, error) {
	if p.RoleCode == "" {
		return nil, nil //nolint:nilnil // no scope to attach is a valid outcome
	}

	level, err := r.registry.JurisdictionLevel(p.RoleCode)

	switch {
	case errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrLevelNotConfigured):
		return Denied(), nil
	case err != nil:
		return nil, err
	}

	if level == LevelAll {
		return Unrestricted(), nil
	}

	if p.RoleCode == RoleCitizen || level == LevelNone {
		return Denied(), nil
	}

	// Role requires an officer profile from here on.
	if p.OfficerID == nil || *p.OfficerID == "" {
		return Denied(), nil
	}

	var officer models.Officer

	err = r.db.Where("id = ?", *p.OfficerID).First(&officer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfficerProfileMissing
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load officer profile %q: %w", *p.OfficerID, err)
	}

	switch level {
	case LevelRange:
		// A missing posting id passes through as nil; downstream filters
		// resolve that to zero rows.
		return &DataScope{Level: LevelRange, JurisdictionIDs: JurisdictionIDs{RangeID: officer.RangeID}}, nil
	case LevelDistrict:
		return &DataScope{Level: LevelDistrict, JurisdictionIDs: JurisdictionIDs{DistrictID: officer.DistrictID}}, nil
	case LevelSubDivision:
		return &DataScope{Level: LevelSubDivision, JurisdictionIDs: JurisdictionIDs{SubDivisionID: officer.SubDivisionID}}, nil
	case LevelPoliceStation:
		return &DataScope{
			Level:           LevelPoliceStation,
			JurisdictionIDs: JurisdictionIDs{PoliceStationID: officer.PoliceStationID},
		}, nil
	case LevelBeat:
		beatID := officer.BeatID
		if beatID == nil || *beatID == "" {
			sentinel := BeatUnassigned
			beatID = &sentinel
		}

		return &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: beatID}}, nil
	default:
		// ParseLevel already normalized, but an unexpected value still fails closed.
		return Denied(), nil
	}
}
