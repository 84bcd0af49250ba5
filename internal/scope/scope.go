package scope

// BeatUnassigned is a placeholder beat id guaranteed to match no real beat.
// It forces zero-result filtering for beat-level officers without an assigned
// beat: they see nothing rather than everything.
const BeatUnassigned = "UNASSIGNED"

// JurisdictionIDs holds the concrete jurisdiction identifiers bounding a
// principal's visibility. For a restrictive level exactly one field is
// expected to be populated; a restrictive scope whose field is nil is
// "restrictive but unusable" and must filter to zero rows.
type JurisdictionIDs struct {
	RangeID         *string `json:"rangeId,omitempty"`
	DistrictID      *string `json:"districtId,omitempty"`
	SubDivisionID   *string `json:"subDivisionId,omitempty"`
	PoliceStationID *string `json:"policeStationId,omitempty"`
	BeatID          *string `json:"beatId,omitempty"`
}

// DataScope is the resolved, per-request visibility filter. It is created
// fresh for every request and never cached across requests, since officer
// postings can change between requests.
type DataScope struct {
	Level           Level           `json:"level"`
	JurisdictionIDs JurisdictionIDs `json:"jurisdictionIds"`
}

// Unrestricted returns the state-wide scope that applies no jurisdiction
// constraint at all.
func Unrestricted() *DataScope {
	return &DataScope{Level: LevelAll}
}

// Denied returns the maximally restrictive scope: beat level with no
// identifier. Every consuming filter resolves it to zero rows.
func Denied() *DataScope {
	return &DataScope{Level: LevelBeat}
}

// IsUnrestricted reports whether the scope applies no jurisdiction constraint.
func (s *DataScope) IsUnrestricted() bool {
	return s != nil && s.Level == LevelAll
}
