package log

import "slasher/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldIndex       = "index"
	FieldID          = "id"
	FieldDate        = "date"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldKind        = "kind"
	FieldSheetsRef   = "sheets_ref"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentCLI    = "cli"
	ComponentWorker = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpTotals   = "totals"
	OpSync     = "sync"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the fields of tx. Descriptions are free text and are
// not logged.
func (f LogFields) WithTransaction(tx core.Transaction) LogFields {
	f[FieldID] = tx.ID
	f[FieldDate] = tx.Date.String()
	f[FieldAmountCents] = tx.Amount.Cents
	f[FieldKind] = string(tx.Kind())
	if c := tx.Category(); c != core.NoCategory {
		f[FieldCategory] = c
	}
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
