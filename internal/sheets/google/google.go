package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	ports "ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// header is the first row of every exported sheet.
var header = []any{"Date", "Action", "Entity", "User", "Category", "Description", "Amount"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base names without year; the row's year is prefixed on every call.
	cashInBase  string
	cashOutBase string
}

// Ensure interface conformance
var (
	_ ports.TransactionWriter = (*Client)(nil)
	_ ports.TransactionLister = (*Client)(nil)
)

// Config names the spreadsheet and the base sheet names of both flows.
type Config struct {
	SpreadsheetID string
	CashInSheet   string
	CashOutSheet  string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional sheet names: GOOGLE_CASH_IN_SHEET (default "Cash In"),
// GOOGLE_CASH_OUT_SHEET (default "Cash Out").
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Config{
		SpreadsheetID: os.Getenv("GOOGLE_SPREADSHEET_ID"),
		CashInSheet:   os.Getenv("GOOGLE_CASH_IN_SHEET"),
		CashOutSheet:  os.Getenv("GOOGLE_CASH_OUT_SHEET"),
	})
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return newClient(svc, spreadsheetID, cfg.CashInSheet, cfg.CashOutSheet), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, cashIn, cashOut string) *Client {
	cashIn = strings.TrimSpace(cashIn)
	if cashIn == "" {
		cashIn = "Cash In"
	}
	cashOut = strings.TrimSpace(cashOut)
	if cashOut == "" {
		cashOut = "Cash Out"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		cashInBase:    cashIn,
		cashOutBase:   cashOut,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// sheetName returns the year-prefixed sheet of flow.
func (c *Client) sheetName(flow ports.Flow, year int) (string, error) {
	switch flow {
	case ports.FlowCashIn:
		return yearPrefixedName(c.cashInBase, year), nil
	case ports.FlowCashOut:
		return yearPrefixedName(c.cashOutBase, year), nil
	default:
		return "", fmt.Errorf("invalid flow %q", flow)
	}
}

// Append writes r on the first empty row of its flow's sheet for the row's
// year, writing the header first when the sheet is empty.
func (c *Client) Append(ctx context.Context, r ports.Row) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	year := r.Date.Year()
	if r.Date.IsZero() {
		year = time.Now().Year()
	}
	sheet, err := c.sheetName(r.Flow, year)
	if err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheet, err)
	}

	var values [][]any
	nextRow := len(resp.Values) + 1
	if len(resp.Values) == 0 {
		values = append(values, header)
	}
	values = append(values, rowValues(r))
	lastRow := nextRow + len(values) - 1

	dataRange := fmt.Sprintf("%s!A%d:G%d", sheet, nextRow, lastRow)
	vr := &gsheet.ValueRange{Values: values}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return fmt.Sprintf("%s!A%d:G%d", sheet, lastRow, lastRow), nil
}

// List reads the rows of flow exported for the given month.
func (c *Client) List(ctx context.Context, flow ports.Flow, year int, month int) ([]ports.Row, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	sheet, err := c.sheetName(flow, year)
	if err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!A:G", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values, flow, month)
}

func rowValues(r ports.Row) []any {
	category := r.Category
	if category == "" && r.CategoryID != 0 {
		category = strconv.FormatInt(r.CategoryID, 10)
	}
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.String()
	}
	return []any{
		date,
		r.Action(),
		r.EntityID,
		r.UserID,
		category,
		r.Description,
		r.Amount.StringFixed(2),
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
