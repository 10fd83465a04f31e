package backend

import (
	"context"

	"ledger/internal/sheets"
)

// Sink is where the worker exports transaction rows.
type Sink interface {
	sheets.TransactionWriter
	sheets.TransactionLister
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SinkResult contains the sink instance and optional cleanup function. Sink
// is nil when exporting is disabled.
type SinkResult struct {
	Sink    Sink
	Cleanup CleanupFunc
}

// Factory creates export sinks based on configuration
type Factory interface {
	CreateSink(ctx context.Context, config Config) (*SinkResult, error)
}

// Config holds configuration for sink creation
type Config struct {
	Type ExportType

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleCashInSheet   string
	GoogleCashOutSheet  string
}

// ExportType represents the type of export sink
type ExportType string

const (
	NoExport     ExportType = "none"
	MemoryExport ExportType = "memory"
	SheetsExport ExportType = "sheets"
)

// String implements fmt.Stringer
func (t ExportType) String() string {
	return string(t)
}

// IsValid returns true if the export type is valid
func (t ExportType) IsValid() bool {
	switch t {
	case NoExport, MemoryExport, SheetsExport:
		return true
	default:
		return false
	}
}
