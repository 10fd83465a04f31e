package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/sheets"
)

// CategoryReader resolves category names for exported rows. *storage.Queries
// satisfies it.
type CategoryReader interface {
	GetIncome(ctx context.Context, id int64) (core.IncomeCategory, error)
	GetExpense(ctx context.Context, id int64) (core.ExpenseCategory, error)
}

type categoryKey struct {
	flow sheets.Flow
	id   int64
}

// ExportWorker exports consumed CashIn and CashOut events to a sink.
type ExportWorker struct {
	sink       sheets.TransactionWriter
	categories CategoryReader
	names      cache.Cache[categoryKey, string]
}

// NewExportWorker creates an export worker. A nil sink acknowledges every
// message without exporting; a nil categories reader exports category ids.
// Resolved names are kept in an LRU of cacheSize entries for ttl.
func NewExportWorker(sink sheets.TransactionWriter, categories CategoryReader, cacheSize int, ttl time.Duration) *ExportWorker {
	return &ExportWorker{
		sink:       sink,
		categories: categories,
		names:      cache.NewLRUCache[categoryKey, string](cacheSize, ttl),
	}
}

// HandleMessage processes one ledger event message from AMQP. Undecodable
// messages are dropped; a failed export is returned so the message is
// requeued.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	e, err := msg.Event()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable ledger event",
			log.FieldMessageID, msg.ID,
			log.FieldError, err)
		return nil
	}
	return w.HandleEvent(ctx, e)
}

// HandleEvent exports e when it concerns a transaction row.
func (w *ExportWorker) HandleEvent(ctx context.Context, e core.Event) error {
	row, ok := sheets.RowFromEvent(e)
	if !ok {
		slog.DebugContext(ctx, "Skipping non-transaction event", log.FieldKind, e.Kind)
		return nil
	}
	if w.sink == nil {
		return nil
	}

	row.Category = w.categoryName(ctx, row.Flow, row.CategoryID)

	ref, err := w.sink.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append to sink: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		log.NewFields().
			WithComponent(log.ComponentWorker).
			WithOperation(log.OpExport).
			WithEvent(e).
			ToSlice()...)
	slog.DebugContext(ctx, "Export reference", log.FieldSheetsRef, ref)

	return nil
}

// categoryName returns the category name, or "" when it cannot be resolved
// so the sink falls back to the id.
func (w *ExportWorker) categoryName(ctx context.Context, flow sheets.Flow, id int64) string {
	if id == 0 || w.categories == nil {
		return ""
	}
	key := categoryKey{flow: flow, id: id}
	if name, ok := w.names.Get(key); ok {
		return name
	}

	var name string
	switch flow {
	case sheets.FlowCashIn:
		c, err := w.categories.GetIncome(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Failed to resolve income category", log.FieldCategoryID, id, log.FieldError, err)
			return ""
		}
		name = c.Name
	case sheets.FlowCashOut:
		c, err := w.categories.GetExpense(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Failed to resolve expense category", log.FieldCategoryID, id, log.FieldError, err)
			return ""
		}
		name = c.Name
	}

	w.names.Set(key, name)
	return name
}
