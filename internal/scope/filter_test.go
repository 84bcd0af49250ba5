package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func seedBeats(t *testing.T, db *gorm.DB) {
	t.Helper()

	beats := []models.Beat{
		{ID: "BT-1", Code: "B1", Name: "Beat One", PoliceStationID: "PS-42", SubDivisionID: "SD-3", DistrictID: "DT-2", RangeID: "RG-1"},
		{ID: "BT-2", Code: "B2", Name: "Beat Two", PoliceStationID: "PS-42", SubDivisionID: "SD-3", DistrictID: "DT-2", RangeID: "RG-1"},
		{ID: "BT-3", Code: "B3", Name: "Beat Three", PoliceStationID: "PS-7", SubDivisionID: "SD-9", DistrictID: "DT-8", RangeID: "RG-1"},
	}

	for i := range beats {
		require.NoError(t, db.Create(&beats[i]).Error, "failed to seed beat")
	}
}

func countBeats(t *testing.T, tx *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, tx.Model(&models.Beat{}).Count(&count).Error)

	return count
}

func TestApplyUnrestricted(t *testing.T) {
	db := setupTestDB(t)
	seedBeats(t, db)

	assert.EqualValues(t, 3, countBeats(t, Apply(db, Unrestricted(), BeatColumns)))
	assert.EqualValues(t, 3, countBeats(t, Apply(db, nil, BeatColumns)), "nil scope applies no restriction")
}

func TestApplyRestrictiveLevels(t *testing.T) {
	db := setupTestDB(t)
	seedBeats(t, db)

	testCases := []struct {
		name     string
		sc       *DataScope
		expected int64
	}{
		{
			name:     "police station id present",
			sc:       &DataScope{Level: LevelPoliceStation, JurisdictionIDs: JurisdictionIDs{PoliceStationID: strPtr("PS-42")}},
			expected: 2,
		},
		{
			name:     "district id present",
			sc:       &DataScope{Level: LevelDistrict, JurisdictionIDs: JurisdictionIDs{DistrictID: strPtr("DT-8")}},
			expected: 1,
		},
		{
			name:     "range id present",
			sc:       &DataScope{Level: LevelRange, JurisdictionIDs: JurisdictionIDs{RangeID: strPtr("RG-1")}},
			expected: 3,
		},
		{
			name:     "beat scope matches the beats primary key",
			sc:       &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr("BT-3")}},
			expected: 1,
		},
		{
			name:     "restrictive level with absent id yields no rows",
			sc:       &DataScope{Level: LevelPoliceStation},
			expected: 0,
		},
		{
			name:     "denied scope yields no rows",
			sc:       Denied(),
			expected: 0,
		},
		{
			name:     "unassigned beat sentinel matches nothing",
			sc:       &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr(BeatUnassigned)}},
			expected: 0,
		},
		{
			name:     "empty string id is treated as absent",
			sc:       &DataScope{Level: LevelDistrict, JurisdictionIDs: JurisdictionIDs{DistrictID: strPtr("")}},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, countBeats(t, Apply(db.Session(&gorm.Session{}), tc.sc, BeatColumns)))
		})
	}
}

func TestApplyMissingColumnFailsClosed(t *testing.T) {
	db := setupTestDB(t)
	seedBeats(t, db)

	// A table without a beat column cannot satisfy a beat-restricted scope.
	noBeatColumn := Columns{PoliceStation: "police_station_id"}
	sc := &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr("BT-1")}}

	assert.EqualValues(t, 0, countBeats(t, Apply(db, sc, noBeatColumn)))
}

func TestApplyCombinesWithCallerFilters(t *testing.T) {
	db := setupTestDB(t)
	seedBeats(t, db)

	scopePS42 := &DataScope{
		Level:           LevelPoliceStation,
		JurisdictionIDs: JurisdictionIDs{PoliceStationID: strPtr("PS-42")},
	}

	// caller narrows within scope: allowed
	tx := db.Where("code = ?", "B1")
	assert.EqualValues(t, 1, countBeats(t, Apply(tx, scopePS42, BeatColumns)))

	// caller asks for a station outside the scope: AND semantics yield nothing
	tx = db.Session(&gorm.Session{}).Where("police_station_id = ?", "PS-7")
	assert.EqualValues(t, 0, countBeats(t, Apply(tx, scopePS42, BeatColumns)))
}

func TestApplyOnHierarchyTable(t *testing.T) {
	db := setupTestDB(t)

	citizens := []models.Citizen{
		{Name: "A", Phone: "100", BeatID: strPtr("BT-1"), PoliceStationID: strPtr("PS-42")},
		{Name: "B", Phone: "101", BeatID: strPtr("BT-2"), PoliceStationID: strPtr("PS-42")},
		{Name: "C", Phone: "102", BeatID: strPtr("BT-3"), PoliceStationID: strPtr("PS-7")},
	}
	for i := range citizens {
		require.NoError(t, db.Create(&citizens[i]).Error)
	}

	count := func(sc *DataScope) int64 {
		var n int64
		require.NoError(t, Apply(db.Session(&gorm.Session{}), sc, HierarchyColumns).Model(&models.Citizen{}).Count(&n).Error)

		return n
	}

	beatScope := &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr("BT-1")}}
	assert.EqualValues(t, 1, count(beatScope))

	sentinelScope := &DataScope{Level: LevelBeat, JurisdictionIDs: JurisdictionIDs{BeatID: strPtr(BeatUnassigned)}}
	assert.EqualValues(t, 0, count(sentinelScope), "unassigned officers see no citizens")

	stationScope := &DataScope{Level: LevelPoliceStation, JurisdictionIDs: JurisdictionIDs{PoliceStationID: strPtr("PS-42")}}
	assert.EqualValues(t, 2, count(stationScope))
}
