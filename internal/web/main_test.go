package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Title: "kutumb-test",
		DB:    config.DB{GormEngine: "sqlite", SQLitePath: ":memory:"},
		Auth: config.Auth{
			JWTSecret:       "test-secret",
			TokenExpiry:     time.Hour,
			LoginRateLimit:  100,
			LoginRateWindow: time.Minute,
		},
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost:8080"},
	}
}

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Designation{},
		&models.Range{},
		&models.District{},
		&models.SubDivision{},
		&models.PoliceStation{},
		&models.Beat{},
		&models.Officer{},
		&models.Citizen{},
		&models.Visit{},
		&models.SOSAlert{},
		&models.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// fixture is the hierarchy every scoping test runs against: one range, one
// district, one sub-division, two stations (PS-42, PS-7) with beats and
// citizens in each.
type fixture struct {
	db  *gorm.DB
	cfg *config.Config

	stationA models.PoliceStation // PS-42
	stationB models.PoliceStation // PS-7
	beatA1   models.Beat
	beatA2   models.Beat
	beatB1   models.Beat
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: setupTestDB(t), cfg: testConfig()}

	rng := models.Range{Code: "RNG-N", Name: "Northern Range"}
	require.NoError(t, f.db.Create(&rng).Error)

	district := models.District{Code: "DST-1", Name: "Central District", RangeID: rng.ID}
	require.NoError(t, f.db.Create(&district).Error)

	subDivision := models.SubDivision{Code: "SDV-1", Name: "City Sub-Division", DistrictID: district.ID}
	require.NoError(t, f.db.Create(&subDivision).Error)

	f.stationA = models.PoliceStation{Code: "PS-42", Name: "Town Station", SubDivisionID: subDivision.ID}
	require.NoError(t, f.db.Create(&f.stationA).Error)

	f.stationB = models.PoliceStation{Code: "PS-7", Name: "Lake Station", SubDivisionID: subDivision.ID}
	require.NoError(t, f.db.Create(&f.stationB).Error)

	mkBeat := func(code string, station *models.PoliceStation) models.Beat {
		b := models.Beat{
			Code:            code,
			Name:            code,
			PoliceStationID: station.ID,
			SubDivisionID:   subDivision.ID,
			DistrictID:      district.ID,
			RangeID:         rng.ID,
			Active:          true,
		}
		require.NoError(t, f.db.Create(&b).Error)

		return b
	}

	f.beatA1 = mkBeat("BT-1", &f.stationA)
	f.beatA2 = mkBeat("BT-2", &f.stationA)
	f.beatB1 = mkBeat("BT-3", &f.stationB)

	mkCitizen := func(name, phone string, beat *models.Beat) {
		c := models.Citizen{
			Name:            name,
			Phone:           phone,
			BeatID:          &beat.ID,
			PoliceStationID: &beat.PoliceStationID,
			SubDivisionID:   &beat.SubDivisionID,
			DistrictID:      &beat.DistrictID,
			RangeID:         &beat.RangeID,
			Status:          models.CitizenStatusVerified,
		}
		require.NoError(t, f.db.Create(&c).Error)
	}

	mkCitizen("Asha Rao", "9000000001", &f.beatA1)
	mkCitizen("Bala Iyer", "9000000002", &f.beatA2)
	mkCitizen("Charu Das", "9000000003", &f.beatB1)

	seedPermissionsAndRoles(t, f.db)

	return f
}

func seedPermissionsAndRoles(t *testing.T, db *gorm.DB) {
	t.Helper()

	allPerms := []string{}
	for _, name := range []string{
		auth.PermCitizenCreate, auth.PermCitizenRead, auth.PermCitizenUpdate, auth.PermCitizenDelete,
		auth.PermOfficerCreate, auth.PermOfficerRead, auth.PermOfficerUpdate, auth.PermOfficerDelete,
		auth.PermVisitSchedule, auth.PermVisitRead, auth.PermVisitUpdate,
		auth.PermSOSRaise, auth.PermSOSRead, auth.PermSOSUpdate,
		auth.PermReportView, auth.PermExportRun,
		auth.PermAdminMasters, auth.PermAdminUsers, auth.PermAdminRoles, auth.PermAuditView,
	} {
		perm := models.Permission{Name: name, Resource: name, Action: "x"}
		require.NoError(t, db.Create(&perm).Error)
		allPerms = append(allPerms, name)
	}

	mkRole := func(code, level string) {
		role := models.Role{Code: code, Name: code, JurisdictionLevel: level, IsSystem: true}
		require.NoError(t, db.Create(&role).Error)

		var perms []models.Permission
		require.NoError(t, db.Where("name IN ?", allPerms).Find(&perms).Error)
		for _, p := range perms {
			require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
		}
	}

	mkRole("SUPER_ADMIN", "ALL")
	mkRole("SHO", "POLICE_STATION")
	mkRole("CONSTABLE", "BEAT")
	mkRole("GHOST_ROLE", "")
}

// userToken creates a user with the given role and officer link and returns a
// signed bearer token.
func (f *fixture) userToken(t *testing.T, username, roleCode string, officerID *string) string {
	t.Helper()

	var role models.Role
	require.NoError(t, f.db.Where("code = ?", roleCode).First(&role).Error)

	user := models.User{
		Username:   username,
		Password:   models.HashPassword("password123"),
		Active:     true,
		RoleID:     role.ID,
		OfficerID:  officerID,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, f.db.Create(&user).Error)

	user.Role = role
	token, err := auth.IssueToken(&f.cfg.Auth, &user)
	require.NoError(t, err)

	return token
}

func (f *fixture) officer(t *testing.T, badge string, stationID, beatID *string) string {
	t.Helper()

	officer := models.Officer{BadgeNumber: badge, Name: badge, PoliceStationID: stationID, BeatID: beatID, Active: true}
	require.NoError(t, f.db.Create(&officer).Error)

	return officer.ID
}

func doRequest(t *testing.T, service *Service, method, target, token string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := service.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}

	return resp.StatusCode, body
}

func items(t *testing.T, body map[string]any) []any {
	t.Helper()

	data, ok := body["data"].([]any)
	require.True(t, ok, "expected list payload, got %v", body)

	return data
}

func TestStationScopedBeatListing(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	officerID := f.officer(t, "SHO-42", &f.stationA.ID, nil)
	token := f.userToken(t, "sho42", "SHO", &officerID)

	status, body := doRequest(t, service, http.MethodGet, "/api/v1/beats", token)
	require.Equal(t, http.StatusOK, status)

	beats := items(t, body)
	require.Len(t, beats, 2)
	for _, b := range beats {
		beat := b.(map[string]any)
		assert.Equal(t, f.stationA.ID, beat["PoliceStationID"])
	}
}

func TestBeatOfficerWithoutBeatSeesNoCitizens(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	officerID := f.officer(t, "C-1", &f.stationA.ID, nil) // no beat assigned
	token := f.userToken(t, "constable1", "CONSTABLE", &officerID)

	status, body := doRequest(t, service, http.MethodGet, "/api/v1/citizens", token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, body))
}

func TestUnrestrictedWithCallerFilter(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	token := f.userToken(t, "admin", "SUPER_ADMIN", nil)

	status, body := doRequest(t, service, http.MethodGet, "/api/v1/citizens", token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, items(t, body), 3)

	status, body = doRequest(t, service, http.MethodGet,
		"/api/v1/citizens?policeStationId="+f.stationB.ID, token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, items(t, body), 1)
}

func TestUnconfiguredRoleSeesNothing(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	token := f.userToken(t, "ghost", "GHOST_ROLE", nil)

	status, body := doRequest(t, service, http.MethodGet, "/api/v1/citizens", token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items(t, body))
}

func TestDanglingOfficerProfileRejected(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	missing := "no-such-officer"
	token := f.userToken(t, "sho-gone", "SHO", &missing)

	status, _ := doRequest(t, service, http.MethodGet, "/api/v1/citizens", token)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestDanglingOfficerProfileRejectedOnMe(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	missing := "no-such-officer"
	token := f.userToken(t, "sho-gone-me", "SHO", &missing)

	status, body := doRequest(t, service, http.MethodGet, "/api/v1/auth/me", token)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, body["success"])
}

func TestMissingTokenRejected(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	status, _ := doRequest(t, service, http.MethodGet, "/api/v1/citizens", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestScopedCitizenGetOutOfScope(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	var outOfScope models.Citizen
	require.NoError(t, f.db.Where("police_station_id = ?", f.stationB.ID).First(&outOfScope).Error)

	officerID := f.officer(t, "SHO-42", &f.stationA.ID, nil)
	token := f.userToken(t, "sho42", "SHO", &officerID)

	status, _ := doRequest(t, service, http.MethodGet, "/api/v1/citizens/"+outOfScope.ID, token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	status, body := doRequest(t, service, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["alive"])
	assert.Equal(t, true, body["database"])
}

func TestHealthzReportsDrain(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	status, _ := doRequest(t, service, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, status)

	// Shutdown flips this flag so the LB drains the instance. The health
	// handler must observe the same flag, not a copy.
	service.alive.Store(false)

	status, body := doRequest(t, service, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, false, body["alive"])
}

func TestMutationIsAudited(t *testing.T) {
	f := setupFixture(t)
	service := New(f.cfg, f.db)

	token := f.userToken(t, "admin", "SUPER_ADMIN", nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/beats/unknown-beat", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := service.App.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	var entry models.AuditLog
	require.NoError(t, f.db.Order("id desc").First(&entry).Error)
	assert.Equal(t, http.MethodDelete, entry.Action)
	assert.Equal(t, "admin", entry.Username)
	assert.Equal(t, http.StatusNotFound, entry.Status)
}
