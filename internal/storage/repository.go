package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dsnOptions turn on foreign keys, wait on a locked database instead of
// failing, and take the write lock at BEGIN so a read-then-update inside
// one transaction cannot interleave with another writer.
const dsnOptions = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN builds the connection string for a database file.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?" + dsnOptions
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Queries runs statements outside any transaction. Use it for reads.
func (r *SQLiteRepository) Queries() *Queries {
	return r.queries
}

// WithTx runs fn as one unit of work. Any error returned by fn, or a panic,
// rolls back every statement fn issued.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.ErrorContext(ctx, "Transaction rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadReservedCategories resolves the seeded reserved category rows to
// their ids.
func (r *SQLiteRepository) LoadReservedCategories(ctx context.Context) (core.ReservedCategories, error) {
	ids := make(map[core.ReservedCategory]int64, 4)
	for _, rc := range core.AllReserved() {
		var (
			id  int64
			err error
		)
		if rc.Flow() == core.FlowIncome {
			var c core.IncomeCategory
			c, err = r.queries.GetIncomeByName(ctx, core.SystemUserID, rc.Name())
			id = c.ID
		} else {
			var c core.ExpenseCategory
			c, err = r.queries.GetExpenseByName(ctx, core.SystemUserID, rc.Name())
			id = c.ID
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return core.ReservedCategories{}, fmt.Errorf("load reserved category %s: %w", rc, err)
		}
		ids[rc] = id
	}

	reserved, err := core.NewReservedCategories(ids)
	if err != nil {
		return core.ReservedCategories{}, err
	}
	slog.InfoContext(ctx, "Reserved categories loaded",
		"debt", reserved.ID(core.ReservedDebt),
		"settled_credit", reserved.ID(core.ReservedSettledCredit),
		"credit", reserved.ID(core.ReservedCredit),
		"settled_debt", reserved.ID(core.ReservedSettledDebt))
	return reserved, nil
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary code only when extended codes are off
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}

// IsConstraintViolation reports whether the store rejected a change for any
// constraint (unique, foreign key, check, not null).
func IsConstraintViolation(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code&0xff == sqlite3.SQLITE_CONSTRAINT
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code(), true
}
