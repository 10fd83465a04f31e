// Package services implements the ledger operations on top of storage.
//
// Every mutation runs inside one storage unit of work. Events describing the
// committed change are published afterwards on a best-effort basis: a
// publish failure is logged and never fails the operation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/storage"
)

// Store is the unit-of-work boundary the services need from storage.
type Store interface {
	Queries() *storage.Queries
	WithTx(ctx context.Context, fn func(q *storage.Queries) error) error
}

// Publisher receives ledger events after commit.
type Publisher interface {
	PublishEvent(ctx context.Context, e core.Event) error
}

// Ledger bundles the services that share one store.
type Ledger struct {
	Categories   *CategoryService
	Transactions *TransactionService
	Obligations  *ObligationService
	Budgets      *BudgetService
	Reports      *ReportService
}

// Options configures NewLedger. Zero values are valid.
type Options struct {
	Publisher   Publisher
	BudgetCache cache.Cache[BudgetKey, core.Budget]
}

func NewLedger(store Store, reserved core.ReservedCategories, opts Options) *Ledger {
	d := &deps{
		store:     store,
		reserved:  reserved,
		publisher: opts.Publisher,
		budgets:   newBudgetIndex(opts.BudgetCache),
	}
	return &Ledger{
		Categories:   &CategoryService{deps: d},
		Transactions: &TransactionService{deps: d},
		Obligations:  &ObligationService{deps: d},
		Budgets:      &BudgetService{deps: d},
		Reports:      &ReportService{deps: d},
	}
}

// deps is shared by every service of one Ledger.
type deps struct {
	store     Store
	reserved  core.ReservedCategories
	publisher Publisher
	budgets   *budgetIndex
}

func (d *deps) publish(ctx context.Context, events ...core.Event) {
	if d.publisher == nil {
		return
	}
	for _, e := range events {
		if err := d.publisher.PublishEvent(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"kind", e.Kind,
				"entity_id", e.EntityID,
				"error", err)
		}
	}
}

// orNotFound maps a missing row to target and wraps anything else.
func orNotFound(err error, target *core.Error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return storeError(op, err)
}

// storeError tags constraint failures as integrity errors.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if storage.IsConstraintViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, core.ErrIntegrity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func asOfOrToday(d core.Date) core.Date {
	if d.IsZero() {
		return core.Today()
	}
	return d
}
