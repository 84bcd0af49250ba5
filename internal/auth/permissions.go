package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions. Jurisdiction scoping is a separate,
// orthogonal layer: a permission says what you may do, the data scope says
// over which slice of the hierarchy.
const (
	// PermCitizenCreate allows registering senior citizens.
	PermCitizenCreate = "citizen.create"
	// PermCitizenRead allows viewing and listing senior citizens.
	PermCitizenRead = "citizen.read"
	// PermCitizenUpdate allows editing senior citizen records.
	PermCitizenUpdate = "citizen.update"
	// PermCitizenDelete allows removing senior citizen records.
	PermCitizenDelete = "citizen.delete"

	// PermOfficerCreate allows creating officer profiles.
	PermOfficerCreate = "officer.create"
	// PermOfficerRead allows viewing and listing officer profiles.
	PermOfficerRead = "officer.read"
	// PermOfficerUpdate allows editing officer profiles and beat assignment.
	PermOfficerUpdate = "officer.update"
	// PermOfficerDelete allows removing officer profiles.
	PermOfficerDelete = "officer.delete"

	// PermVisitSchedule allows scheduling welfare visits.
	PermVisitSchedule = "visit.schedule"
	// PermVisitRead allows viewing and listing welfare visits.
	PermVisitRead = "visit.read"
	// PermVisitUpdate allows completing and cancelling welfare visits.
	PermVisitUpdate = "visit.update"

	// PermSOSRaise allows raising an SOS alert on behalf of a citizen.
	PermSOSRaise = "sos.raise"
	// PermSOSRead allows viewing and listing SOS alerts.
	PermSOSRead = "sos.read"
	// PermSOSUpdate allows acknowledging and resolving SOS alerts.
	PermSOSUpdate = "sos.update"

	// PermReportView allows viewing jurisdiction reports and dashboards.
	PermReportView = "report.view"
	// PermExportRun allows exporting scoped data as CSV.
	PermExportRun = "export.run"

	// PermAdminMasters allows managing geographic and designation master data.
	PermAdminMasters = "admin.masters"
	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.users"
	// PermAdminRoles allows managing roles and their permissions.
	PermAdminRoles = "admin.roles"
	// PermAuditView allows viewing the audit log.
	PermAuditView = "audit.view"
)
