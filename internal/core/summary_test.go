package core

import "testing"

func TestSummarize(t *testing.T) {
	cases := []struct {
		name                  string
		amounts               []int64
		income, expenses, net int64
	}{
		{"empty", nil, 0, 0, 0},
		{"income only", []int64{100, 250}, 350, 0, 350},
		{"expense only", []int64{-100, -1}, 0, 101, -101},
		{"mixed", []int64{100000, -5000}, 100000, 5000, 95000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			txs := make([]Transaction, len(tc.amounts))
			for i, a := range tc.amounts {
				txs[i] = Transaction{Amount: Money{Cents: a}}
			}
			got := Summarize(txs)
			if got.Income.Cents != tc.income || got.Expenses.Cents != tc.expenses || got.Net.Cents != tc.net {
				t.Fatalf("got %+v", got)
			}
			if got.Income.Cents-got.Expenses.Cents != got.Net.Cents {
				t.Fatal("net must equal income minus expenses")
			}
		})
	}
}
