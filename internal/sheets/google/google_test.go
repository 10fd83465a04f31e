package google

import (
	"context"
	"testing"

	"ledger/internal/core"
	ports "ledger/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/sa.json")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestDefaultSheetNames(t *testing.T) {
	c := newClient(nil, "id", "", "  ")
	assert.Equal(t, "Cash In", c.cashInBase)
	assert.Equal(t, "Cash Out", c.cashOutBase)

	name, err := c.sheetName(ports.FlowCashOut, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024 Cash Out", name)

	c = newClient(nil, "id", "Entrate", "2023 Uscite")
	name, err = c.sheetName(ports.FlowCashIn, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024 Entrate", name)
	name, err = c.sheetName(ports.FlowCashOut, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2023 Uscite", name, "explicit year is kept")

	_, err = c.sheetName("other", 2024)
	assert.Error(t, err)
}

func TestClient_AppendValidatesBeforeCalling(t *testing.T) {
	c := newClient(nil, "test", "", "")

	_, err := c.Append(context.Background(), ports.Row{Flow: ports.FlowCashOut})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	_, err = c.Append(context.Background(), ports.Row{
		Flow:     ports.FlowCashOut,
		Kind:     core.EventCashOutCreated,
		EntityID: 1,
		Date:     core.NewDate(2024, 10, 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	_, err = c.List(context.Background(), ports.FlowCashIn, 2024, 13)
	assert.Error(t, err)
}

func TestRowValues(t *testing.T) {
	got := rowValues(ports.Row{
		Flow:        ports.FlowCashOut,
		Kind:        core.EventCashOutUpdated,
		EntityID:    7,
		UserID:      2,
		CategoryID:  5,
		Date:        core.NewDate(2024, 10, 3),
		Description: "groceries",
		Amount:      core.MustMoney("12.345"),
	})
	assert.Equal(t, []any{"2024-10-03", "updated", int64(7), int64(2), "5", "groceries", "12.35"}, got)

	named := rowValues(ports.Row{Kind: core.EventCashInDeleted, EntityID: 1, CategoryID: 5, Category: "Salary"})
	assert.Equal(t, "", named[0])
	assert.Equal(t, "Salary", named[4])
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Cash Out", 2025, "2025 Cash Out"},
		{"Cash In", 2024, "2024 Cash In"},
		{"", 2023, ""},
		{"  Test Sheet ", 2022, "2022 Test Sheet"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
		{"1234 Not A Year", 2024, "2024 1234 Not A Year"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, yearPrefixedName(tt.baseName, tt.year), "base %q", tt.baseName)
	}
}

func TestIndexOfAndSafeGet(t *testing.T) {
	arr := []string{"Date", " action ", "Amount"}
	assert.Equal(t, 1, indexOf(arr, "Action"))
	assert.Equal(t, -1, indexOf(arr, "User"))
	assert.Equal(t, "Amount", safeGet(arr, 2))
	assert.Equal(t, "", safeGet(arr, 3))
	assert.Equal(t, "", safeGet(arr, -1))
}
