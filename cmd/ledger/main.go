package main

import (
	"context"
	"fmt"
	"os"

	"ledger/internal/cli"
	"ledger/internal/storage"
)

const usage = `usage: ledger <command> [flags]

commands:
  migrate     apply pending schema migrations
  user        add or list users
  report      income, expense and savings totals for a date range
  reconcile   backfill and print a monthly budget
  audit       report budget counters that disagree with their cash outs
`

func main() {
	cli.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "migrate" {
		if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
			logger.Error("Migration failed", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to read migration version", "error", err)
			os.Exit(1)
		}
		fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
		return
	}

	ctx := context.Background()
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	l := cli.InitLedger(ctx, logger, repo, cli.InitAMQP(logger, cfg), cfg)
	defer l.Close()

	if err := run(ctx, l, cmd, args, os.Stdout); err != nil {
		logger.Error("Command failed", "command", cmd, "error", err)
		l.Close()
		os.Exit(1)
	}
}
