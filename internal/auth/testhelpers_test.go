package auth

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
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedRoleWithPermissions inserts a role holding the given permissions.
func seedRoleWithPermissions(t *testing.T, db *gorm.DB, code string, perms ...string) models.Role {
	t.Helper()

	role := models.Role{Code: code, Name: code}
	require.NoError(t, db.Create(&role).Error, "failed to seed role")

	for _, name := range perms {
		perm := models.Permission{Name: name, Resource: name, Action: "x"}
		require.NoError(t, db.Where("name = ?", name).FirstOrCreate(&perm).Error, "failed to seed permission")

		rp := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
		require.NoError(t, db.Create(&rp).Error, "failed to seed role permission")
	}

	return role
}

// seedUser inserts an active local user with the given role and password.
func seedUser(t *testing.T, db *gorm.DB, username, password string, roleID uint) models.User {
	t.Helper()

	user := models.User{
		Username:   username,
		Password:   models.HashPassword(password),
		Active:     true,
		RoleID:     roleID,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, db.Create(&user).Error, "failed to seed user")

	return user
}
