package models

import "time"

// AuditLog records who changed what through the API.
// Only mutating endpoints write entries; reads are not audited.
type AuditLog struct {
	// ID is the unique identifier for the entry.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the acting user, zero for unauthenticated actions.
	UserID uint64 `gorm:"index"`
	// Username is denormalized for readability after user deletion.
	Username string `gorm:"size:100"`
	// Action is the HTTP method of the request.
	Action string `gorm:"size:10;not null"`
	// Resource is the request path.
	Resource string `gorm:"size:255;not null"`
	// Status is the response status code.
	Status int
	// IP is the remote address of the caller.
	IP string `gorm:"size:45"`
	// CreatedAt is the timestamp of the action (managed by GORM).
	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides GORM's default pluralized table naming.
func (AuditLog) TableName() string {
	return "audit_logs"
}
