package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldCompany    = "company_id"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldRunID      = "run_id"
	FieldPayee      = "payee"
	FieldPayeeKind  = "payee_kind"
	FieldGross      = "gross"
	FieldNet        = "net"
	FieldCount      = "count"
	FieldPath       = "path"
	FieldBackend    = "backend"
	FieldPeriodEnd  = "period_end"
	FieldAsOf       = "as_of"
	FieldDifference = "difference"
)

// Components
const (
	ComponentApp      = "app"
	ComponentPayroll  = "payroll"
	ComponentLedger   = "ledger"
	ComponentReports  = "reports"
	ComponentStorage  = "storage"
	ComponentImporter = "importer"
	ComponentWork     = "work"
)
