package google

import (
	"testing"

	"slasher/internal/core"
)

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:          7,
		Date:        core.NewDate(2024, 1, 3),
		Description: "Groceries",
		Tags:        "category:food,shop:coop",
		Amount:      core.Money{Cents: -5025},
	}
	row := transactionRow(tx)
	if len(row) != len(header) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(header))
	}
	want := []any{int64(7), "2024-01-03", "Groceries", "food", "category:food,shop:coop", -50.25, "expense"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %#v, want %#v", i, row[i], want[i])
		}
	}
}

func TestIndexIDColumn(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"3"},
		{},
		{"not a number"},
		{float64(12)},
		{" 5 "},
	}
	rows := indexIDColumn(values)
	want := map[int64]int{3: 2, 12: 5, 5: 6}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for id, row := range want {
		if rows[id] != row {
			t.Errorf("rows[%d] = %d, want %d", id, rows[id], row)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := map[string]string{
		"Transactions": "Transactions",
		"My sheet":     "'My sheet'",
		"Bob's":        "'Bob''s'",
		"2024_tx":      "2024_tx",
	}
	for in, want := range tests {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
	if got := rowRange("My sheet", 4); got != "'My sheet'!A4:G4" {
		t.Errorf("rowRange = %q", got)
	}
}
