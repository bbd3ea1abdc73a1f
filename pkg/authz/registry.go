package authz

const (
	RoleCompanyAdmin   = "company-admin"
	RolePayrollManager = "payroll-manager"
	RoleAuditor        = "auditor"
	RoleAnonymous      = "anonymous"
)

const (
	ActionRead  = "read"
	ActionAdmin = "admin"
)

const DomainGlobal = "global"

const (
	ObjectPayrollRuns    = "payroll.runs"
	ObjectPayrollRecords = "payroll.records"
	ObjectPayrollLocks   = "payroll.locks"
)
