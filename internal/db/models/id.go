package models

import "github.com/google/uuid"

// newID generates a random identifier for the string keyed domain models.
func newID() string {
	return uuid.NewString()
}
