package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldKey        = "key"
	FieldBytes      = "bytes"
	FieldCount      = "count"
	FieldCommand    = "command"
	FieldTxID       = "transaction_id"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldCurrency   = "currency"
	FieldLedgerSize = "ledger_size"
	FieldBackend    = "backend"
	FieldDurationMs = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentLedger      = "ledger"
	ComponentCategory    = "category"
	ComponentPersistence = "persistence"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpDispatch = "dispatch"
	OpRename   = "rename"
	OpRemove   = "remove"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeReadCorruption = "read_corruption"
	ErrorTypeWriteFailure   = "write_failure"
	ErrorTypeValidation     = "validation_error"
	ErrorTypeConfiguration  = "configuration_error"
	ErrorTypeNetwork        = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error taxonomy field
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithKey adds the storage key field
func (f LogFields) WithKey(key string) LogFields {
	f[FieldKey] = key
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, amount, category string) LogFields {
	f[FieldTxID] = id
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// ToSlice converts LogFields to a slice for slog. The component field is
// left out since Logger adds its own.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
