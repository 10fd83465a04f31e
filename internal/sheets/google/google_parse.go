package google

import (
	"fmt"
	"strconv"
	"strings"

	"ledger/internal/core"
	ports "ledger/internal/sheets"
)

// parseRows converts a values matrix (as returned by Sheets API) into the
// rows of flow dated in month (1-12). The first row must be the header;
// columns are located by name so reordered sheets still parse.
func parseRows(values [][]any, flow ports.Flow, month int) ([]ports.Row, error) {
	if len(values) == 0 {
		return []ports.Row{}, nil
	}
	headers := toStrings(values[0])
	cols := map[string]int{}
	var missing []string
	for _, h := range header {
		name := h.(string)
		idx := indexOf(headers, name)
		if idx == -1 {
			missing = append(missing, name)
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	out := []ports.Row{}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		date, err := core.ParseDate(safeGet(row, cols["Date"]))
		if err != nil || date.Month() != month {
			continue
		}
		entityID, err := strconv.ParseInt(safeGet(row, cols["Entity"]), 10, 64)
		if err != nil {
			continue
		}
		userID, _ := strconv.ParseInt(safeGet(row, cols["User"]), 10, 64)
		amount, err := core.ParseAmount(safeGet(row, cols["Amount"]))
		if err != nil {
			amount = core.Zero
		}
		r := ports.Row{
			Flow:        flow,
			Kind:        core.EventKind(string(flow) + "." + safeGet(row, cols["Action"])),
			EntityID:    entityID,
			UserID:      userID,
			Category:    safeGet(row, cols["Category"]),
			Date:        date,
			Description: safeGet(row, cols["Description"]),
			Amount:      amount,
		}
		out = append(out, r)
	}
	return out, nil
}
