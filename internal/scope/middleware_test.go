package scope

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// scopeEcho registers a probe route returning the resolved scope as JSON.
func scopeEcho(app *fiber.App) {
	app.Get("/probe", func(c *fiber.Ctx) error {
		sc := FromCtx(c)
		if sc == nil {
			return c.JSON(fiber.Map{"scoped": false})
		}

		return c.JSON(fiber.Map{"scoped": true, "scope": sc})
	})
}

func TestMiddlewareAttachesScope(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SHO", "POLICE_STATION")

	officerID := seedOfficer(t, db, models.Officer{
		BadgeNumber:     "B-5001",
		Name:            "Station Head",
		PoliceStationID: strPtr("PS-42"),
	})

	resolver := NewResolver(db, NewRegistry(db))

	principal := Principal{RoleCode: "SHO", OfficerID: &officerID}
	app := fiber.New()
	app.Use(Middleware(resolver, func(_ *fiber.Ctx) (Principal, bool) {
		return principal, true
	}))
	scopeEcho(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out struct {
		Scoped bool      `json:"scoped"`
		Scope  DataScope `json:"scope"`
	}
	require.NoError(t, json.Unmarshal(body, &out))

	assert.True(t, out.Scoped)
	assert.Equal(t, LevelPoliceStation, out.Scope.Level)
	require.NotNil(t, out.Scope.JurisdictionIDs.PoliceStationID)
	assert.Equal(t, "PS-42", *out.Scope.JurisdictionIDs.PoliceStationID)
}

func TestMiddlewareNoPrincipalPassesThrough(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db, NewRegistry(db))

	app := fiber.New()
	app.Use(Middleware(resolver, func(_ *fiber.Ctx) (Principal, bool) {
		return Principal{}, false
	}))
	scopeEcho(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scoped": false}`, string(body))
}

func TestMiddlewareRejectsDanglingProfile(t *testing.T) {
	db := setupTestDB(t)
	seedRole(t, db, "SHO", "POLICE_STATION")

	resolver := NewResolver(db, NewRegistry(db))

	app := fiber.New()
	app.Use(Middleware(resolver, func(_ *fiber.Ctx) (Principal, bool) {
		return Principal{RoleCode: "SHO", OfficerID: strPtr("gone")}, true
	}))
	scopeEcho(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMiddlewareUnknownRoleStillSucceeds(t *testing.T) {
	// An unconfigured role is not an error; handlers see a denied scope and
	// return empty data with a normal success response.
	db := setupTestDB(t)
	resolver := NewResolver(db, NewRegistry(db))

	app := fiber.New()
	app.Use(Middleware(resolver, func(_ *fiber.Ctx) (Principal, bool) {
		return Principal{RoleCode: "GHOST_ROLE"}, true
	}))
	scopeEcho(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out struct {
		Scoped bool      `json:"scoped"`
		Scope  DataScope `json:"scope"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Scoped)
	assert.Equal(t, LevelBeat, out.Scope.Level)
	assert.Equal(t, JurisdictionIDs{}, out.Scope.JurisdictionIDs)
}
