// Package export implements scoped CSV exports.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
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

// batchSize rows are fetched per query while streaming an export.
const batchSize = 500

// Service holds the dependencies of the export handlers.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	auth *auth.Service
}

// Handler is the exported handler instance.
var Handler = Service{}

// Init wires the export routes.
func (s *Service) Init(app fiber.Router, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	s.cfg = cfg
	s.db = db
	s.auth = authService

	run := auth.RequirePermission(authService, auth.PermExportRun)

	app.Get("/export/citizens.csv", run, s.Citizens)
	app.Get("/export/visits.csv", run, s.Visits)

	return nil
}

// Citizens exports the citizens visible under the caller's scope as CSV.
func (s *Service) Citizens(c *fiber.Ctx) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "name", "phone", "status", "lives_alone", "address",
		"beat_id", "police_station_id", "sub_division_id", "district_id", "range_id",
		"assigned_officer_id", "created_at",
	}
	if err := w.Write(header); err != nil {
		return handler.ServerError(c)
	}

	tx := scope.Apply(s.db.Model(&models.Citizen{}), scope.FromCtx(c), scope.HierarchyColumns)

	var batch []models.Citizen
	err := tx.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			cz := &batch[i]
			row := []string{
				cz.ID, cz.Name, cz.Phone, string(cz.Status),
				strconv.FormatBool(cz.LivesAlone), cz.Address,
				deref(cz.BeatID), deref(cz.PoliceStationID), deref(cz.SubDivisionID),
				deref(cz.DistrictID), deref(cz.RangeID),
				deref(cz.AssignedOfficerID),
				cz.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}

		return nil
	}).Error
	if err != nil {
		log.Error().Err(err).Msg("could not export citizens")

		return handler.ServerError(c)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Error().Err(err).Msg("could not write csv")

		return handler.ServerError(c)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="citizens.csv"`)

	return c.Send(buf.Bytes())
}

// Visits exports the visits visible under the caller's scope as CSV,
// optionally narrowed to a scheduling window.
func (s *Service) Visits(c *fiber.Ctx) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "citizen_id", "officer_id", "status", "scheduled_at", "completed_at",
		"beat_id", "police_station_id", "sub_division_id", "district_id", "range_id",
	}
	if err := w.Write(header); err != nil {
		return handler.ServerError(c)
	}

	tx := scope.Apply(s.db.Model(&models.Visit{}), scope.FromCtx(c), scope.HierarchyColumns)

	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("scheduled_at >= ?", t)
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			tx = tx.Where("scheduled_at < ?", t)
		}
	}

	var batch []models.Visit
	err := tx.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			v := &batch[i]
			completed := ""
			if v.CompletedAt != nil {
				completed = v.CompletedAt.Format(time.RFC3339)
			}

			row := []string{
				v.ID, v.CitizenID, v.OfficerID, string(v.Status),
				v.ScheduledAt.Format(time.RFC3339), completed,
				deref(v.BeatID), deref(v.PoliceStationID), deref(v.SubDivisionID),
				deref(v.DistrictID), deref(v.RangeID),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}

		return nil
	}).Error
	if err != nil {
		log.Error().Err(err).Msg("could not export visits")

		return handler.ServerError(c)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Error().Err(err).Msg("could not write csv")

		return handler.ServerError(c)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="visits.csv"`)

	return c.Send(buf.Bytes())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
