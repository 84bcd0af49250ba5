package login

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func setupLoginApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Officer{},
	)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.Auth{JWTSecret: "test-secret", TokenExpiry: time.Hour},
	}

	app := fiber.New()
	require.NoError(t, Handler.Init(app, cfg, db, auth.NewService(db), nil))

	return app, db, cfg
}

func seedLoginUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	role := models.Role{Code: "SHO", Name: "SHO", JurisdictionLevel: "POLICE_STATION"}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Username:   username,
		Password:   models.HashPassword(password),
		Active:     true,
		RoleID:     role.ID,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func postLogin(t *testing.T, app *fiber.App, payload map[string]string) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return resp.StatusCode, body
}

func TestLoginSuccess(t *testing.T) {
	app, db, cfg := setupLoginApp(t)
	seedLoginUser(t, db, "sho42", "correct-horse")

	status, body := postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "correct-horse",
	})

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])

	claims, err := auth.ParseToken(&cfg.Auth, data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "SHO", claims.Role)
	assert.Equal(t, "sho42", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	app, db, _ := setupLoginApp(t)
	seedLoginUser(t, db, "sho42", "correct-horse")

	status, body := postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestLoginUnknownUser(t *testing.T) {
	app, _, _ := setupLoginApp(t)

	status, _ := postLogin(t, app, map[string]string{
		"username": "nobody",
		"password": "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginDisabledUser(t *testing.T) {
	app, db, _ := setupLoginApp(t)
	user := seedLoginUser(t, db, "sho42", "correct-horse")
	require.NoError(t, db.Model(user).Update("active", false).Error)

	status, _ := postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "correct-horse",
	})

	assert.Equal(t, http.StatusForbidden, status)
}

func TestLoginMissingFields(t *testing.T) {
	app, _, _ := setupLoginApp(t)

	status, _ := postLogin(t, app, map[string]string{"username": "sho42"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginWithTOTP(t *testing.T) {
	app, db, _ := setupLoginApp(t)
	user := seedLoginUser(t, db, "sho42", "correct-horse")

	secret, _, err := auth.GenerateTOTPSecret(user.Username)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("totp_secret", secret).Error)

	// without a code
	status, _ := postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// with a wrong code
	status, _ = postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "correct-horse",
		"totpCode": "000000",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// with a valid code
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	status, body := postLogin(t, app, map[string]string{
		"username": "sho42",
		"password": "correct-horse",
		"totpCode": code,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}
