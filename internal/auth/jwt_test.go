package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func testAuthConfig() *config.Auth {
	return &config.Auth{JWTSecret: "test-secret", TokenExpiry: time.Hour}
}

func TestIssueAndParseToken(t *testing.T) {
	cfg := testAuthConfig()

	officerID := "OFF-1"
	user := &models.User{
		ID:        42,
		Username:  "sho.ps42",
		OfficerID: &officerID,
		Role:      models.Role{Code: "SHO"},
	}

	token, err := IssueToken(cfg, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), claims.UserID())
	assert.Equal(t, "sho.ps42", claims.Username)
	assert.Equal(t, "SHO", claims.Role)
	require.NotNil(t, claims.OfficerID)
	assert.Equal(t, "OFF-1", *claims.OfficerID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testAuthConfig(), &models.User{ID: 1, Username: "u"})
	require.NoError(t, err)

	_, err = ParseToken(&config.Auth{JWTSecret: "other-secret"}, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	cfg := &config.Auth{JWTSecret: "test-secret", TokenExpiry: -time.Minute}

	token, err := IssueToken(cfg, &models.User{ID: 1, Username: "u"})
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testAuthConfig(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueTokenNoOfficer(t *testing.T) {
	cfg := testAuthConfig()

	token, err := IssueToken(cfg, &models.User{ID: 7, Username: "admin", Role: models.Role{Code: "SUPER_ADMIN"}})
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)

	assert.Nil(t, claims.OfficerID)
}
