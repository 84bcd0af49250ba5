package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func TestResolveNoRole(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db, NewRegistry(db))

	sc, err := resolver.Resolve(Principal{})
	require.NoError(t, err)
	assert.Nil(t, sc, "principal without role gets no scope attached")
}

func TestResolveFailClosedDefaults(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "CITIZEN", "NONE")
	seedRole(t, db, "BROKEN_ROLE", "GALAXY")
	seedRole(t, db, "SHO", "POLICE_STATION")
	seedRole(t, db, "UNSET_ROLE", "")

	resolver := NewResolver(db, NewRegistry(db))

	testCases := []struct {
		name      string
		principal Principal
	}{
		{
			name:      "unknown role code",
			principal: Principal{RoleCode: "GHOST_ROLE"},
		},
		{
			name:      "role with unparseable level",
			principal: Principal{RoleCode: "BROKEN_ROLE"},
		},
		{
			name:      "role with empty level",
			principal: Principal{RoleCode: "UNSET_ROLE"},
		},
		{
			name:      "citizen role",
			principal: Principal{RoleCode: "CITIZEN"},
		},
		{
			name:      "officer role without linked profile",
			principal: Principal{RoleCode: "SHO"},
		},
		{
			name:      "officer role with empty profile reference",
			principal: Principal{RoleCode: "SHO", OfficerID: strPtr("")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := resolver.Resolve(tc.principal)
			require.NoError(t, err)
			require.NotNil(t, sc)
			assert.Equal(t, LevelBeat, sc.Level)
			assert.Equal(t, JurisdictionIDs{}, sc.JurisdictionIDs, "denied scope carries no identifiers")
		})
	}
}

func TestResolveAllLevel(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SUPER_ADMIN", "ALL")
	seedRole(t, db, "COMMISSIONER", "STATE") // alias for ALL

	resolver := NewResolver(db, NewRegistry(db))

	for _, roleCode := range []string{"SUPER_ADMIN", "COMMISSIONER"} {
		sc, err := resolver.Resolve(Principal{RoleCode: roleCode})
		require.NoError(t, err)
		require.NotNil(t, sc)
		assert.True(t, sc.IsUnrestricted())
		assert.Equal(t, JurisdictionIDs{}, sc.JurisdictionIDs)
	}
}

func TestResolveDanglingOfficerReference(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SHO", "POLICE_STATION")

	resolver := NewResolver(db, NewRegistry(db))

	sc, err := resolver.Resolve(Principal{RoleCode: "SHO", OfficerID: strPtr("no-such-officer")})
	require.ErrorIs(t, err, ErrOfficerProfileMissing)
	assert.Nil(t, sc, "no scope is produced for a dangling profile reference")
}

func TestResolveOfficerLevels(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "IGP", "RANGE")
	seedRole(t, db, "SP", "DISTRICT")
	seedRole(t, db, "SDPO", "SUB_DIVISION") // alias spelling in the registry
	seedRole(t, db, "SHO", "POLICE_STATION")
	seedRole(t, db, "CONSTABLE", "BEAT")

	officerID := seedOfficer(t, db, models.Officer{
		BadgeNumber:     "B-1001",
		Name:            "Full Posting",
		RangeID:         strPtr("RG-1"),
		DistrictID:      strPtr("DT-2"),
		SubDivisionID:   strPtr("SD-3"),
		PoliceStationID: strPtr("PS-42"),
		BeatID:          strPtr("BT-7"),
	})

	resolver := NewResolver(db, NewRegistry(db))

	testCases := []struct {
		roleCode string
		expected DataScope
	}{
		{"IGP", DataScope{Level: LevelRange, JurisdictionIDs: JurisdictionIDs{RangeID: strPtr("RG-1")}}},
		{"SP", DataScope{Level: LevelDistrict, JurisdictionIDs: JurisdictionIDs{DistrictID: strPtr("DT-2")}}},
		{"SDPO", DataScope{Level: LevelSubDivision, JurisdictionIDs: JurisdictionIDs{SubDivisionID: strPtr("SD-3")}}},
		{"SHO", DataScope{Level: LevelPoliceStation, JurisdictionIDs: JurisdictionIDs{PoliceStationID: strPtr("PS-42")}}},
		{"CONSTABLE", DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr("BT-7")}}},
	}

	for _, tc := range testCases {
		t.Run(tc.roleCode, func(t *testing.T) {
			sc, err := resolver.Resolve(Principal{RoleCode: tc.roleCode, OfficerID: &officerID})
			require.NoError(t, err)
			require.NotNil(t, sc)
			assert.Equal(t, tc.expected, *sc)
		})
	}
}

func TestResolveMissingPostingPassesThrough(t *testing.T) {
	// A range-level role whose officer has no posted range keeps the nil id;
	// the query filter resolves that to zero rows, not the resolver.
	db := setupTestDB(t)
	seedRole(t, db, "IGP", "RANGE")

	officerID := seedOfficer(t, db, models.Officer{BadgeNumber: "B-2001", Name: "Unposted"})

	resolver := NewResolver(db, NewRegistry(db))

	sc, err := resolver.Resolve(Principal{RoleCode: "IGP", OfficerID: &officerID})
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, LevelRange, sc.Level)
	assert.Nil(t, sc.JurisdictionIDs.RangeID)
}

func TestResolveBeatUnassignedSentinel(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "CONSTABLE", "BEAT")

	officerID := seedOfficer(t, db, models.Officer{
		BadgeNumber:     "B-3001",
		Name:            "No Beat",
		PoliceStationID: strPtr("PS-42"),
	})

	resolver := NewResolver(db, NewRegistry(db))

	sc, err := resolver.Resolve(Principal{RoleCode: "CONSTABLE", OfficerID: &officerID})
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, LevelBeat, sc.Level)
	require.NotNil(t, sc.JurisdictionIDs.BeatID)
	assert.Equal(t, BeatUnassigned, *sc.JurisdictionIDs.BeatID)
}

func TestResolveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SHO", "POLICE_STATION")

	officerID := seedOfficer(t, db, models.Officer{
		BadgeNumber:     "B-4001",
		Name:            "Stable",
		PoliceStationID: strPtr("PS-42"),
	})

	resolver := NewResolver(db, NewRegistry(db))
	principal := Principal{RoleCode: "SHO", OfficerID: &officerID}

	first, err := resolver.Resolve(principal)
	require.NoError(t, err)

	second, err := resolver.Resolve(principal)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRegistryOutcomes(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SHO", "POLICE_STATION")
	seedRole(t, db, "LEGACY", "SUB_DIVISION")
	seedRole(t, db, "BROKEN", "WHATEVER")

	registry := NewRegistry(db)

	level, err := registry.JurisdictionLevel("SHO")
	require.NoError(t, err)
	assert.Equal(t, LevelPoliceStation, level)

	// alias is normalized at the registry boundary
	level, err = registry.JurisdictionLevel("LEGACY")
	require.NoError(t, err)
	assert.Equal(t, LevelSubDivision, level)

	_, err = registry.JurisdictionLevel("GHOST")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = registry.JurisdictionLevel("BROKEN")
	assert.ErrorIs(t, err, ErrLevelNotConfigured)
}
