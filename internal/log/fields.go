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
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldDebtID     = "debt_id"
	FieldReason     = "reason"
	FieldAmount     = "amount_cents"
	FieldFrequency  = "frequency"
	FieldOccurrence = "occurrence"
	FieldReceiptURI = "receipt_uri"
)

// Component names attached by the logger wrapper
const (
	ComponentApp     = "app"
	ComponentBackend = "backend"
)
