package scope

import "errors"

var (
	// ErrRoleNotFound is returned by the registry when no role with the given
	// code exists. This is a valid outcome, not a fault: the resolver degrades
	// it to zero visibility.
	ErrRoleNotFound = errors.New("role not found")

	// ErrLevelNotConfigured is returned by the registry when a role exists but
	// carries no recognizable jurisdiction level. Treated like an unknown role.
	ErrLevelNotConfigured = errors.New("role has no configured jurisdiction level")

	// ErrOfficerProfileMissing is returned when a principal references an
	// officer profile that does not exist. Unlike a principal with no linked
	// profile this is a data-integrity fault and rejects the request.
	ErrOfficerProfileMissing = errors.New("officer profile not found")
)
