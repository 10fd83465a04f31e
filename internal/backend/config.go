package backend

import (
	"fmt"

	"ledger/internal/config"
)

// FromAppConfig converts the application config to sink config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	exportType := ExportType(appConfig.ExportBackend)
	if exportType == "" {
		exportType = NoExport
	}
	if !exportType.IsValid() {
		return Config{}, fmt.Errorf("invalid export backend in config: %s", appConfig.ExportBackend)
	}

	return Config{
		Type:                exportType,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleCashInSheet:   appConfig.GoogleCashInSheet,
		GoogleCashOutSheet:  appConfig.GoogleCashOutSheet,
	}, nil
}

// Validate validates the sink configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export type: %s", c.Type)
	}

	if c.Type == SheetsExport {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets export")
		}
		if c.GoogleCashInSheet == "" || c.GoogleCashOutSheet == "" {
			return fmt.Errorf("Google cash in and cash out sheet names are required for sheets export")
		}
	}

	return nil
}

// GetExportTypes returns all valid export types
func GetExportTypes() []ExportType {
	return []ExportType{NoExport, MemoryExport, SheetsExport}
}
