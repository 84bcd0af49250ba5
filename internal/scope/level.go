// Package scope implements jurisdiction based data scoping.
//
// A user's role carries a jurisdiction level (ALL down to BEAT). Combined with
// the linked officer profile's posting ids this resolves to a DataScope, a
// per-request visibility filter every scoped listing and report must honor.
// Ambiguous or missing authorization data always degrades to zero visibility,
// never to broadened access.
package scope

// Level is the granularity at which a role's visibility is bounded.
type Level string

// Jurisdiction levels, widest to narrowest. LevelNone grants no listing
// visibility at all (e.g., citizen-facing roles).
const (
	LevelAll           Level = "ALL"
	LevelRange         Level = "RANGE"
	LevelDistrict      Level = "DISTRICT"
	LevelSubDivision   Level = "SUBDIVISION"
	LevelPoliceStation Level = "POLICE_STATION"
	LevelBeat          Level = "BEAT"
	LevelNone          Level = "NONE"
)

// ParseLevel normalizes a configured jurisdiction level string to its
// canonical Level. Historic alias spellings are folded here so consumers never
// see them. The second return is false for empty or unrecognized input.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "ALL", "STATE":
		return LevelAll, true
	case "RANGE":
		return LevelRange, true
	case "DISTRICT":
		return LevelDistrict, true
	case "SUBDIVISION", "SUB_DIVISION":
		return LevelSubDivision, true
	case "POLICE_STATION":
		return LevelPoliceStation, true
	case "BEAT":
		return LevelBeat, true
	case "NONE":
		return LevelNone, true
	default:
		return "", false
	}
}
