package log

import "ledger/internal/core"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldEntityID   = "entity_id"
	FieldCategoryID = "category_id"
	FieldAmount     = "amount"
	FieldDate       = "date"
	FieldKind       = "kind"
	FieldBudgetID   = "budget_id"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldSheetsRef  = "sheets_ref"
	FieldMessageID  = "message_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentAudit   = "audit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSettle   = "settle"
	OpExport   = "export"
	OpAudit    = "audit"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
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

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEvent adds the fields describing a ledger event.
func (f LogFields) WithEvent(e core.Event) LogFields {
	f[FieldKind] = string(e.Kind)
	f[FieldUserID] = e.UserID
	f[FieldEntityID] = e.EntityID
	if e.CategoryID != 0 {
		f[FieldCategoryID] = e.CategoryID
	}
	if !e.Amount.IsZero() {
		f[FieldAmount] = e.Amount.String()
	}
	if !e.Date.IsZero() {
		f[FieldDate] = e.Date.String()
	}
	return f
}

// WithDrift adds the fields of one budget drift.
func (f LogFields) WithDrift(budgetID int64, d core.Drift) LogFields {
	f[FieldBudgetID] = budgetID
	f[FieldEntityID] = d.BudgetExpenseID
	f[FieldCategoryID] = d.ExpenseID
	f[FieldAmount] = d.Difference().String()
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
