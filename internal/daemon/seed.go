package daemon

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/auth"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// permissionCatalogue is the full set of permissions known to the system.
// Seeding is additive: new permissions appear on upgrade, removed ones are
// left in place.
var permissionCatalogue = []string{
	auth.PermCitizenCreate,
	auth.PermCitizenRead,
	auth.PermCitizenUpdate,
	auth.PermCitizenDelete,
	auth.PermOfficerCreate,
	auth.PermOfficerRead,
	auth.PermOfficerUpdate,
	auth.PermOfficerDelete,
	auth.PermVisitSchedule,
	auth.PermVisitRead,
	auth.PermVisitUpdate,
	auth.PermSOSRaise,
	auth.PermSOSRead,
	auth.PermSOSUpdate,
	auth.PermReportView,
	auth.PermExportRun,
	auth.PermAdminMasters,
	auth.PermAdminUsers,
	auth.PermAdminRoles,
	auth.PermAuditView,
}

// systemRole describes a role created at first start.
type systemRole struct {
	code        string
	name        string
	level       string
	permissions []string
}

var fieldPermissions = []string{
	auth.PermCitizenCreate,
	auth.PermCitizenRead,
	auth.PermCitizenUpdate,
	auth.PermOfficerRead,
	auth.PermVisitSchedule,
	auth.PermVisitRead,
	auth.PermVisitUpdate,
	auth.PermSOSRaise,
	auth.PermSOSRead,
	auth.PermSOSUpdate,
	auth.PermReportView,
}

var supervisorPermissions = append([]string{
	auth.PermCitizenDelete,
	auth.PermOfficerCreate,
	auth.PermOfficerUpdate,
	auth.PermExportRun,
}, fieldPermissions...)

var systemRoles = []systemRole{
	{
		code:        "SUPER_ADMIN",
		name:        "Super Administrator",
		level:       "ALL",
		permissions: permissionCatalogue,
	},
	{
		code:        "IGP",
		name:        "Inspector General of Police (Range)",
		level:       "RANGE",
		permissions: supervisorPermissions,
	},
	{
		code:        "SP",
		name:        "Superintendent of Police (District)",
		level:       "DISTRICT",
		permissions: supervisorPermissions,
	},
	{
		code:        "SDPO",
		name:        "Sub-Divisional Police Officer",
		level:       "SUB_DIVISION",
		permissions: supervisorPermissions,
	},
	{
		code:        "SHO",
		name:        "Station House Officer",
		level:       "POLICE_STATION",
		permissions: supervisorPermissions,
	},
	{
		code:        "BEAT_OFFICER",
		name:        "Beat Officer",
		level:       "BEAT",
		permissions: fieldPermissions,
	},
	{
		code:        "CITIZEN",
		name:        "Citizen",
		level:       "NONE",
		permissions: []string{auth.PermSOSRaise},
	},
}

func seed(_ *config.Config, db *gorm.DB) {
	seedPermissions(db)
	seedRoles(db)
	seedAdminUser(db)
}

func seedPermissions(db *gorm.DB) {
	for _, name := range permissionCatalogue {
		resource, action, _ := strings.Cut(name, ".")

		perm := models.Permission{Name: name, Resource: resource, Action: action}
		err := db.Where("name = ?", name).FirstOrCreate(&perm).Error
		if err != nil {
			log.Fatal().Err(err).Str("permission", name).Msg("failed to seed permission")
		}
	}
}

func seedRoles(db *gorm.DB) {
	for _, sr := range systemRoles {
		role := models.Role{
			Code:              sr.code,
			Name:              sr.name,
			JurisdictionLevel: sr.level,
			IsSystem:          true,
		}

		err := db.Where("code = ?", sr.code).FirstOrCreate(&role).Error
		if err != nil {
			log.Fatal().Err(err).Str("role", sr.code).Msg("failed to seed role")
		}

		for _, permName := range sr.permissions {
			var perm models.Permission
			if err := db.Where("name = ?", permName).First(&perm).Error; err != nil {
				log.Fatal().Err(err).Str("permission", permName).Msg("failed to load permission")
			}

			rp := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			err := db.Where("role_id = ? AND permission_id = ?", role.ID, perm.ID).
				FirstOrCreate(&rp).Error
			if err != nil {
				log.Fatal().Err(err).Str("role", sr.code).Msg("failed to seed role permission")
			}
		}
	}
}

func seedAdminUser(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	var adminRole models.Role
	if err := db.Where("code = ?", "SUPER_ADMIN").First(&adminRole).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to load admin role")
	}

	err := db.Create(
		&models.User{
			Username:   "admin",
			Password:   models.HashPassword("changeme"),
			FullName:   "Administrator",
			Active:     true,
			RoleID:     adminRole.ID,
			AuthSource: models.AuthSourceLocal,
		},
	).Error
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	log.Warn().Msg("created default admin user with password 'changeme', change it immediately")
}
