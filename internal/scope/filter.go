package scope

import "gorm.io/gorm"

// Columns maps each jurisdiction level to the column that carries it on a
// scoped table. An empty name means the table has no column for that level;
// a restrictive scope at that level then filters to zero rows.
type Columns struct {
	Range         string
	District      string
	SubDivision   string
	PoliceStation string
	Beat          string
}

// HierarchyColumns fits every table that denormalizes the full hierarchy
// (officers, citizens, visits, sos alerts).
var HierarchyColumns = Columns{
	Range:         "range_id",
	District:      "district_id",
	SubDivision:   "sub_division_id",
	PoliceStation: "police_station_id",
	Beat:          "beat_id",
}

// BeatColumns fits the beats table itself, where the beat id is the primary key.
var BeatColumns = Columns{
	Range:         "range_id",
	District:      "district_id",
	SubDivision:   "sub_division_id",
	PoliceStation: "police_station_id",
	Beat:          "id",
}

// Apply narrows tx to the rows visible under the given scope.
//
// This is the single fail-closed combinator every scoped listing goes through:
//
//   - nil scope or level ALL: tx is returned untouched.
//   - restrictive level with its identifier present: an equality constraint on
//     the mapped column is ANDed onto tx. Caller-supplied filters already on tx
//     stay in effect; they can narrow the result but never escape the scope.
//   - restrictive level whose identifier is absent, or with no mapped column:
//     an always-false predicate is added. A missing identifier under a
//     restrictive scope means no rows, never no constraint.
//
// An unsatisfiable scope is not an error: the query runs and returns an empty
// result set with a normal success response.
func Apply(tx *gorm.DB, sc *DataScope, cols Columns) *gorm.DB {
	if sc == nil || sc.Level == LevelAll {
		return tx
	}

	var (
		column string
		id     *string
	)

	switch sc.Level {
	case LevelRange:
		column, id = cols.Range, sc.JurisdictionIDs.RangeID
	case LevelDistrict:
		column, id = cols.District, sc.JurisdictionIDs.DistrictID
	case LevelSubDivision:
		column, id = cols.SubDivision, sc.JurisdictionIDs.SubDivisionID
	case LevelPoliceStation:
		column, id = cols.PoliceStation, sc.JurisdictionIDs.PoliceStationID
	case LevelBeat:
		column, id = cols.Beat, sc.JurisdictionIDs.BeatID
	}

	if column == "" || id == nil || *id == "" {
		return tx.Where("1 = 0")
	}

	return tx.Where(column+" = ?", *id)
}
