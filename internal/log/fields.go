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

	FieldTransactionID  = "transaction_id"
	FieldSubscriptionID = "subscription_id"
	FieldMonthKey       = "month_key"
	FieldBucket         = "bucket"
	FieldTag            = "tag"
	FieldAmount         = "amount"
	FieldEventID        = "event_id"
)

// Standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStore       = "store"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentMaterialize = "materialize"
	ComponentBackend     = "backend"
)
