package google

import (
	"fmt"
	"strconv"
	"strings"

	"slasher/internal/core"
)

// Columns of the mirror sheet, A through G.
var header = []any{"ID", "Date", "Description", "Category", "Tags", "Amount", "Type"}

const lastColumn = "G"

// transactionRow renders tx as one sheet row matching header.
func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Description,
		tx.Category(),
		tx.Tags,
		tx.Amount.Float(),
		string(tx.Kind()),
	}
}

// quoteSheet quotes a sheet title for A1 notation when it needs it.
func quoteSheet(name string) string {
	if name == "" {
		return name
	}
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

// rowRange is the A:G range of a single 1-based row.
func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, lastColumn, row)
}

// indexIDColumn maps ids found in column A to their 1-based row. The header
// row, blank cells and non-numeric cells are skipped.
func indexIDColumn(values [][]any) map[int64]int {
	rows := make(map[int64]int, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		rows[id] = i + 1
	}
	return rows
}
