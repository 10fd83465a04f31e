package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

// UserLister lists the users to audit. *storage.Queries satisfies it.
type UserLister interface {
	ListUsers(ctx context.Context) ([]core.User, error)
}

// Auditor compares budget counters with their derived sums.
// *services.BudgetService satisfies it.
type Auditor interface {
	AuditUser(ctx context.Context, userID int64) (map[int64][]core.Drift, error)
}

// AuditLoopConfig holds configuration for the audit loop
type AuditLoopConfig struct {
	// Interval is how often every user's budgets are audited (default: 1h)
	Interval time.Duration
}

// DefaultAuditLoopConfig returns sensible defaults
func DefaultAuditLoopConfig() AuditLoopConfig {
	return AuditLoopConfig{Interval: time.Hour}
}

// AuditResult summarizes one audit pass.
type AuditResult struct {
	Users   int
	Budgets int // budgets with at least one drift
	Drifts  int
	Failed  int
}

// AuditLoop periodically reports budget counters that disagree with the
// CashOut rows of their month. It only logs; nothing is corrected.
type AuditLoop struct {
	users   UserLister
	auditor Auditor
	config  AuditLoopConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewAuditLoop(users UserLister, auditor Auditor, config AuditLoopConfig) *AuditLoop {
	if config.Interval <= 0 {
		config.Interval = DefaultAuditLoopConfig().Interval
	}
	return &AuditLoop{
		users:   users,
		auditor: auditor,
		config:  config,
	}
}

// Start begins the audit loop. Returns an error if already running.
func (a *AuditLoop) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("audit loop is already running")
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	a.mu.Unlock()

	go a.runLoop(ctx)

	slog.InfoContext(ctx, "Audit loop started", "interval", a.config.Interval)
	return nil
}

// Stop stops the loop and waits for the running pass to finish.
func (a *AuditLoop) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	stopCh, doneCh := a.stopCh, a.doneCh
	a.running = false
	a.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Audit loop stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Audit loop stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is currently running
func (a *AuditLoop) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Run audits until ctx is cancelled. It is the errgroup-friendly form of
// Start followed by Stop.
func (a *AuditLoop) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *AuditLoop) runLoop(ctx context.Context) {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	// Audit immediately on startup
	a.RunOnce(ctx)

	for {
		select {
		case <-a.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RunOnce(ctx)
		}
	}
}

// RunOnce audits every user's budgets once and logs each drift found. A
// failing user is logged and skipped.
func (a *AuditLoop) RunOnce(ctx context.Context) AuditResult {
	var res AuditResult

	users, err := a.users.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list users for audit", log.FieldError, err)
		res.Failed++
		return res
	}

	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		// The system user only owns the reserved categories.
		if u.ID == core.SystemUserID {
			continue
		}
		res.Users++
		byBudget, err := a.auditor.AuditUser(ctx, u.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to audit user budgets",
				log.FieldUserID, u.ID,
				log.FieldError, err)
			res.Failed++
			continue
		}
		for budgetID, drifts := range byBudget {
			res.Budgets++
			for _, d := range drifts {
				res.Drifts++
				slog.WarnContext(ctx, "Budget counter drift",
					log.NewFields().
						WithComponent(log.ComponentAudit).
						WithOperation(log.OpAudit).
						WithDrift(budgetID, d).
						ToSlice()...)
			}
		}
	}

	slog.InfoContext(ctx, "Budget audit completed",
		"users", res.Users,
		"drifts", res.Drifts,
		"failed", res.Failed)

	return res
}
