package core

// Totals is the summary of a transaction set. Expenses is a positive magnitude.
type Totals struct {
	Income   Money
	Expenses Money
	Net      Money
}

// Summarize computes all three figures in a single pass.
func Summarize(txs []Transaction) Totals {
	var income, expenses int64
	for _, t := range txs {
		if t.Amount.Cents > 0 {
			income += t.Amount.Cents
		} else {
			expenses -= t.Amount.Cents
		}
	}
	return Totals{
		Income:   Money{Cents: income},
		Expenses: Money{Cents: expenses},
		Net:      Money{Cents: income - expenses},
	}
}
