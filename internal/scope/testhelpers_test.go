package scope

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.Officer{},
		&models.Beat{},
		&models.Citizen{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedRole inserts a role with the given code and raw jurisdiction level.
func seedRole(t *testing.T, db *gorm.DB, code, level string) {
	t.Helper()

	err := db.Create(&models.Role{Code: code, Name: code, JurisdictionLevel: level}).Error
	require.NoError(t, err, "failed to seed role")
}

// seedOfficer inserts an officer profile and returns its id.
func seedOfficer(t *testing.T, db *gorm.DB, officer models.Officer) string {
	t.Helper()

	if officer.BadgeNumber == "" {
		officer.BadgeNumber = "B-" + officer.Name
	}

	err := db.Create(&officer).Error
	require.NoError(t, err, "failed to seed officer")

	return officer.ID
}

func strPtr(s string) *string {
	return &s
}
