package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"

	FieldUserID      = "user_id"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldChannel     = "channel"
	FieldAmountCents = "amount_cents"
	FieldTxCount     = "transaction_count"
	FieldSchedule    = "schedule"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentNotify    = "notify"
	ComponentScheduler = "scheduler"
	ComponentStorage   = "storage"
	ComponentEvents    = "events"
	ComponentAuth      = "auth"
)
