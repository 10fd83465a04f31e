package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new sink factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSink implements Factory.CreateSink
func (f *DefaultFactory) CreateSink(ctx context.Context, config Config) (*SinkResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NoExport:
		f.logger.Info("Transaction export disabled")
		return &SinkResult{}, nil
	case SheetsExport:
		return f.createSheetsSink(ctx, config)
	case MemoryExport:
		f.logger.Info("Initialized memory export sink")
		return &SinkResult{Sink: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported export type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsSink(ctx context.Context, config Config) (*SinkResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID: config.GoogleSpreadsheetID,
		CashInSheet:   config.GoogleCashInSheet,
		CashOutSheet:  config.GoogleCashOutSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets export sink",
		"cash_in_sheet", config.GoogleCashInSheet,
		"cash_out_sheet", config.GoogleCashOutSheet)

	return &SinkResult{Sink: cli}, nil
}
