package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEventID    = "event_id"
	FieldEventDate  = "event_date"
	FieldEventTime  = "event_time"
	FieldTitle      = "event_title"
	FieldPriceCents = "price_cents"
	FieldCompleted  = "completed"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldTotalCents = "total_cents"
)

// Components defines standard component names. Each binary scopes its
// default logger to one of these; the cache manager stamps its own records.
const (
	ComponentApp    = "app"
	ComponentCache  = "cache"
	ComponentExport = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
