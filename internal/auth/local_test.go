package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func TestLocalAuthenticate(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "SHO")
	seedUser(t, db, "sho", "correct-horse", role.ID)

	provider := NewLocalProvider(db)

	user, err := provider.Authenticate("sho", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "sho", user.Username)
	assert.Equal(t, "SHO", user.Role.Code)
}

func TestLocalAuthenticateWrongPassword(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "SHO")
	seedUser(t, db, "sho", "correct-horse", role.ID)

	provider := NewLocalProvider(db)

	_, err := provider.Authenticate("sho", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLocalAuthenticateUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	provider := NewLocalProvider(db)

	_, err := provider.Authenticate("missing", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLocalAuthenticateDisabledUser(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "SHO")
	user := seedUser(t, db, "sho", "correct-horse", role.ID)

	require.NoError(t, db.Model(&user).Update("active", false).Error)

	provider := NewLocalProvider(db)

	_, err := provider.Authenticate("sho", "correct-horse")
	assert.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	role := seedRoleWithPermissions(t, db, "BEAT_OFFICER")
	provider := NewLocalProvider(db)

	officerID := "OFF-1"
	user, err := provider.CreateUser("beat1", "beat1@example.org", "password123", "Beat One", role.ID, &officerID)
	require.NoError(t, err)

	assert.True(t, user.Active)
	assert.Equal(t, models.AuthSourceLocal, user.AuthSource)
	require.NotNil(t, user.OfficerID)
	assert.Equal(t, "OFF-1", *user.OfficerID)
	assert.True(t, user.VerifyPassword("password123"))

	_, err = provider.CreateUser("beat1", "", "password123", "", role.ID, nil)
	assert.ErrorIs(t, err, ErrUserNameExists)
}
