package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "SHO", PermCitizenRead, PermVisitRead)
	user := seedUser(t, db, "sho", "password123", role.ID)

	service := NewService(db)

	ok, err := service.HasPermission(user.ID, PermCitizenRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasPermission(user.ID, PermCitizenDelete)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	ok, err := service.HasPermission(9999, PermCitizenRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAnyPermission(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "BEAT_OFFICER", PermSOSRead)
	user := seedUser(t, db, "beat", "password123", role.ID)

	service := NewService(db)

	ok, err := service.HasAnyPermission(user.ID, []string{PermAdminUsers, PermSOSRead})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasAnyPermission(user.ID, []string{PermAdminUsers, PermAdminRoles})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserPermissions(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "SP", PermCitizenRead, PermExportRun, PermReportView)
	user := seedUser(t, db, "sp", "password123", role.ID)

	service := NewService(db)

	perms, err := service.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PermCitizenRead, PermExportRun, PermReportView}, perms)
}
