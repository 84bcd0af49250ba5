// Package report implements the jurisdiction dashboard endpoints. Every
// figure is computed inside the caller's data scope, so the same endpoint
// serves a beat officer and a range officer with their own slice.
package report

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/scope"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/web/handler"
)

// Service holds the dependencies of the report handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the report routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	view := auth.RequirePermission(authService, auth.PermReportView)

	app.Get("/reports/overview", view, s.Overview)
	app.Get("/reports/visit-compliance", view, s.VisitCompliance)

	return nil
}

type overviewResponse struct {
	Citizens struct {
		Total      int64 `json:"total"`
		Pending    int64 `json:"pending"`
		Verified   int64 `json:"verified"`
		LivesAlone int64 `json:"livesAlone"`
	} `json:"citizens"`
	Officers int64 `json:"officers"`
	Beats    int64 `json:"beats"`
	Visits   struct {
		ScheduledToday int64 `json:"scheduledToday"`
		CompletedToday int64 `json:"completedToday"`
		Overdue        int64 `json:"overdue"`
	} `json:"visits"`
	SOS struct {
		Open         int64 `json:"open"`
		Acknowledged int64 `json:"acknowledged"`
	} `json:"sos"`
}

// Overview returns headline counts for the caller's jurisdiction.
func (s *Service) Overview(c *fiber.Ctx) error {
	sc := scope.FromCtx(c)

	var out overviewResponse
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	counts := []struct {
		dst *int64
		tx  *gorm.DB
	}{
		{&out.Citizens.Total, scope.Apply(s.db.Model(&models.Citizen{}), sc, scope.HierarchyColumns)},
		{&out.Citizens.Pending, scope.Apply(s.db.Model(&models.Citizen{}), sc, scope.HierarchyColumns).
			Where("status = ?", models.CitizenStatusPending)},
		{&out.Citizens.Verified, scope.Apply(s.db.Model(&models.Citizen{}), sc, scope.HierarchyColumns).
			Where("status = ?", models.CitizenStatusVerified)},
		{&out.Citizens.LivesAlone, scope.Apply(s.db.Model(&models.Citizen{}), sc, scope.HierarchyColumns).
			Where("lives_alone = ?", true)},
		{&out.Officers, scope.Apply(s.db.Model(&models.Officer{}), sc, scope.HierarchyColumns)},
		{&out.Beats, scope.Apply(s.db.Model(&models.Beat{}), sc, scope.BeatColumns)},
		{&out.Visits.ScheduledToday, scope.Apply(s.db.Model(&models.Visit{}), sc, scope.HierarchyColumns).
			Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayEnd)},
		{&out.Visits.CompletedToday, scope.Apply(s.db.Model(&models.Visit{}), sc, scope.HierarchyColumns).
			Where("status = ? AND completed_at >= ? AND completed_at < ?", models.VisitStatusCompleted, dayStart, dayEnd)},
		{&out.Visits.Overdue, scope.Apply(s.db.Model(&models.Visit{}), sc, scope.HierarchyColumns).
			Where("status = ? AND scheduled_at < ?", models.VisitStatusScheduled, now)},
		{&out.SOS.Open, scope.Apply(s.db.Model(&models.SOSAlert{}), sc, scope.HierarchyColumns).
			Where("status = ?", models.SOSStatusOpen)},
		{&out.SOS.Acknowledged, scope.Apply(s.db.Model(&models.SOSAlert{}), sc, scope.HierarchyColumns).
			Where("status = ?", models.SOSStatusAcknowledged)},
	}

	for _, count := range counts {
		if err := count.tx.Count(count.dst).Error; err != nil {
			log.Error().Err(err).Msg("could not compute overview")

			return handler.ServerError(c)
		}
	}

	return handler.Success(c, out)
}

type complianceRow struct {
	PoliceStationID string `json:"policeStationId"`
	Scheduled       int64  `json:"scheduled"`
	Completed       int64  `json:"completed"`
	Missed          int64  `json:"missed"`
	Cancelled       int64  `json:"cancelled"`
}

// VisitCompliance breaks down visit outcomes per police station inside the
// caller's scope for the requested period (default: last 30 days).
func (s *Service) VisitCompliance(c *fiber.Ctx) error {
	from := time.Now().AddDate(0, 0, -30)
	to := time.Now()

	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}

	tx := s.db.Model(&models.Visit{}).
		Select(`police_station_id,
			count(*) as scheduled,
			sum(case when status = 'completed' then 1 else 0 end) as completed,
			sum(case when status = 'missed' then 1 else 0 end) as missed,
			sum(case when status = 'cancelled' then 1 else 0 end) as cancelled`).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("police_station_id IS NOT NULL").
		Group("police_station_id").
		Order("police_station_id")
	tx = scope.Apply(tx, scope.FromCtx(c), scope.HierarchyColumns)

	var rows []complianceRow
	if err := tx.Scan(&rows).Error; err != nil {
		log.Error().Err(err).Msg("could not compute visit compliance")

		return handler.ServerError(c)
	}

	return handler.Success(c, fiber.Map{
		"from":     from,
		"to":       to,
		"stations": rows,
	})
}
