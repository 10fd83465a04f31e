package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"ledger/internal/cli"
	"ledger/internal/core"
	"ledger/internal/storage"
	"ledger/internal/worker"
)

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, l *cli.Ledger, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "user":
		return runUser(ctx, l, args, w)
	case "report":
		return runReport(ctx, l, args, w)
	case "reconcile":
		return runReconcile(ctx, l, args, w)
	case "audit":
		return runAudit(ctx, l, args, w)
	default:
		fmt.Fprint(w, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

func runUser(ctx context.Context, l *cli.Ledger, args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: user add|list", errUsage)
	}
	q := l.Repo.Queries()

	switch args[0] {
	case "add":
		fs := newFlagSet("user add", w)
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email address")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *first == "" || *email == "" {
			return fmt.Errorf("%w: -first and -email are required", errUsage)
		}
		u, err := q.CreateUser(ctx, storage.CreateUserParams{
			FirstName: core.NormalizeName(*first),
			LastName:  core.NormalizeName(*last),
			Email:     *email,
		})
		if err != nil {
			if storage.IsUniqueViolation(err) {
				return fmt.Errorf("email %s is already registered", *email)
			}
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(w, "user %d created\n", u.ID)
		return nil
	case "list":
		users, err := q.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s %s\t%s\n", u.ID, u.FirstName, u.LastName, u.Email)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("%w: unknown user command %q", errUsage, args[0])
	}
}

// rangeFlags parses -from and -to, defaulting to the current month to date.
func rangeFlags(fs *flag.FlagSet) func() (core.DateRange, error) {
	from := fs.String("from", "", "first day, YYYY-MM-DD (default: first of this month)")
	to := fs.String("to", "", "last day, YYYY-MM-DD (default: today)")
	return func() (core.DateRange, error) {
		r := core.DefaultRange(core.Today())
		if *to != "" {
			d, err := core.ParseDate(*to)
			if err != nil {
				return r, err
			}
			r = core.DefaultRange(d)
		}
		if *from != "" {
			d, err := core.ParseDate(*from)
			if err != nil {
				return r, err
			}
			r.Start = d
		}
		return r, nil
	}
}

func runReport(ctx context.Context, l *cli.Ledger, args []string, w io.Writer) error {
	fs := newFlagSet("report", w)
	userID := fs.Int64("user", 0, "user id")
	dateRange := rangeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := dateRange()
	if err != nil {
		return err
	}

	income, _, err := l.Reports.TotalIncomeBetween(ctx, *userID, r)
	if err != nil {
		return err
	}
	expenses, _, err := l.Reports.TotalExpensesBetween(ctx, *userID, r)
	if err != nil {
		return err
	}
	savings, savingsPct, err := l.Reports.SavingsBetween(ctx, *userID, r)
	if err != nil {
		return err
	}
	byCategory, err := l.Reports.ExpenseTotalsByCategory(ctx, *userID, r)
	if err != nil {
		return err
	}
	pctOfIncome, totalPct, err := l.Reports.ExpensePercentageOfIncome(ctx, *userID, r)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s .. %s\n", r.Start, r.End)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "income\t%s\t\n", income.StringFixed(2))
	fmt.Fprintf(tw, "expenses\t%s\t%s\t\n", expenses.StringFixed(2), core.FormatPercent(totalPct))
	fmt.Fprintf(tw, "savings\t%s\t%s\t\n", savings.StringFixed(2), core.FormatPercent(savingsPct))
	fmt.Fprintln(tw, "\t\t\t")
	for _, c := range byCategory {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.Name, c.Amount.StringFixed(2), core.FormatPercent(pctOfIncome[c.Name]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	weeks, err := l.Reports.WeeklyCashOut(ctx, *userID, r.End)
	if err != nil {
		return err
	}
	for i, amount := range weeks {
		fmt.Fprintf(w, "week %d: %s\n", i+1, amount.StringFixed(2))
	}
	return nil
}

func runReconcile(ctx context.Context, l *cli.Ledger, args []string, w io.Writer) error {
	fs := newFlagSet("reconcile", w)
	userID := fs.Int64("user", 0, "user id")
	today := core.Today()
	year := fs.Int("year", today.Year(), "budget year")
	month := fs.Int("month", today.Month(), "budget month (1-12)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := l.Budgets.GetBudget(ctx, *userID, *year, *month)
	if err != nil {
		return err
	}
	summary, err := l.Budgets.ReconcileOnView(ctx, b.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "budget %d-%02d\n", b.Year, b.Month)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "EXPENSE\tEXPECTED\tSPENT\t%\t")
	for _, line := range summary.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			line.ExpenseName,
			line.ExpectedAmount.StringFixed(2),
			line.SpentAmount.StringFixed(2),
			core.FormatPercent(line.SpentPercent))
	}
	fmt.Fprintf(tw, "total\t%s\t%s\t%s\t\n",
		summary.TotalExpected.StringFixed(2),
		summary.TotalSpent.StringFixed(2),
		core.FormatPercent(summary.SpentPercent))
	return tw.Flush()
}

func runAudit(ctx context.Context, l *cli.Ledger, args []string, w io.Writer) error {
	fs := newFlagSet("audit", w)
	userID := fs.Int64("user", 0, "user id (default: every user)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID == 0 {
		res := worker.NewAuditLoop(l.Repo.Queries(), l.Budgets, worker.DefaultAuditLoopConfig()).RunOnce(ctx)
		fmt.Fprintf(w, "audited %d users: %d drifts in %d budgets, %d failures\n",
			res.Users, res.Drifts, res.Budgets, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d audits failed", res.Failed)
		}
		return nil
	}

	byBudget, err := l.Budgets.AuditUser(ctx, *userID)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(byBudget))
	for id := range byBudget {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUDGET\tLINE\tEXPENSE\tCOUNTER\tDERIVED\tDIFF")
	for _, id := range ids {
		for _, d := range byBudget[id] {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
				id, d.BudgetExpenseID, d.ExpenseID,
				d.SpentAmount.StringFixed(2),
				d.DerivedAmount.StringFixed(2),
				d.Difference().StringFixed(2))
		}
	}
	return tw.Flush()
}
