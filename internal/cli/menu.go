package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"slasher/internal/core"
	applog "slasher/internal/log"
	"slasher/internal/services"
)

// clearTags is typed at the tags prompt of an edit to remove all tags.
const clearTags = "-"

// Tracker is the part of services.TransactionService the menu drives.
type Tracker interface {
	Add(ctx context.Context, in core.Input) (core.Entry, error)
	List(ctx context.Context) ([]core.Entry, error)
	Edit(ctx context.Context, index int, c core.Changes) (core.Entry, error)
	Remove(ctx context.Context, index int) (core.Entry, error)
	Totals(ctx context.Context) (core.Totals, error)
	NetValue(ctx context.Context) (core.Money, error)
}

// Menu is the numbered interactive menu. It only formats and prompts; every
// rule lives behind Tracker.
type Menu struct {
	tracker Tracker
	in      *bufio.Scanner
	out     io.Writer
}

func NewMenu(tracker Tracker, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		tracker: tracker,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Failed operations are reported and the menu continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, err := m.prompt("Choose: ")
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case "1":
			err = m.add(ctx)
		case "2":
			err = m.list(ctx)
		case "3":
			err = m.summary(ctx)
		case "4":
			err = m.netValue(ctx)
		case "5":
			err = m.remove(ctx)
		case "6":
			err = m.edit(ctx)
		case "0":
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return m.finish(err)
			}
			m.report(ctx, err)
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "=== Expense Slasher ===")
	fmt.Fprintln(m.out, "1) Add transaction")
	fmt.Fprintln(m.out, "2) Show all transactions")
	fmt.Fprintln(m.out, "3) Show summary")
	fmt.Fprintln(m.out, "4) Show net value")
	fmt.Fprintln(m.out, "5) Remove a transaction")
	fmt.Fprintln(m.out, "6) Edit a transaction")
	fmt.Fprintln(m.out, "0) Exit")
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "Goodbye!")
		return nil
	}
	return err
}

func (m *Menu) report(ctx context.Context, err error) {
	switch {
	case services.IsNotFound(err):
		fmt.Fprintf(m.out, "Not found: %v\n", err)
	case services.IsValidation(err):
		fmt.Fprintf(m.out, "%v\n", err)
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
		slog.ErrorContext(ctx, "Menu operation failed", applog.FieldError, err)
	}
}

// prompt prints label and reads one trimmed line. io.EOF means input ended.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) add(ctx context.Context) error {
	var in core.Input
	fields := []struct {
		name  string
		label string
		dst   *string
	}{
		{"date", "Date (YYYY-MM-DD, blank=today): ", &in.Date},
		{"description", "Description: ", &in.Description},
		{"tags", "Tags (e.g. category:food, blank=none): ", &in.Tags},
		{"amount", "Amount (positive number): ", &in.Amount},
		{"type", "Type (income/expense): ", &in.Kind},
	}

	for _, f := range fields {
		v, err := m.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	for {
		e, err := m.tracker.Add(ctx, in)
		if err == nil {
			fmt.Fprintf(m.out, "Transaction added: %s\n", formatEntry(e))
			return nil
		}

		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fmt.Fprintf(m.out, "%v\n", err)

		found := false
		for _, f := range fields {
			if f.name != ve.Field {
				continue
			}
			found = true
			v, err := m.prompt(f.label)
			if err != nil {
				return err
			}
			*f.dst = v
		}
		if !found {
			return err
		}
	}
}

func (m *Menu) list(ctx context.Context) error {
	entries, err := m.tracker.List(ctx)
	if err != nil {
		return err
	}
	m.printEntries(entries)
	return nil
}

func (m *Menu) printEntries(entries []core.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(m.out, "No transactions.")
		return
	}
	w := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDate\tType\tAmount\tCategory\tDescription")
	for _, e := range entries {
		category := e.Category
		if category == core.NoCategory {
			category = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", e.Index, e.Date, e.Kind, e.Amount, category, e.Description)
	}
	w.Flush()
}

func (m *Menu) summary(ctx context.Context) error {
	t, err := m.tracker.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Total Income : $%s\n", t.Income)
	fmt.Fprintf(m.out, "Total Expense: $%s\n", t.Expenses)
	fmt.Fprintf(m.out, "Net Savings  : $%s\n", t.Net)
	return nil
}

func (m *Menu) netValue(ctx context.Context) error {
	v, err := m.tracker.NetValue(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Net Value: $%s\n", v)
	return nil
}

// pickIndex lists the transactions and asks for one of them. ok is false
// when there is nothing to pick or the answer was not a number.
func (m *Menu) pickIndex(ctx context.Context, verb string) (entries []core.Entry, index int, ok bool, err error) {
	entries, err = m.tracker.List(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	m.printEntries(entries)
	if len(entries) == 0 {
		return entries, 0, false, nil
	}

	raw, err := m.prompt(fmt.Sprintf("Enter the index to %s: ", verb))
	if err != nil {
		return nil, 0, false, err
	}
	index, convErr := strconv.Atoi(raw)
	if convErr != nil {
		fmt.Fprintln(m.out, "Index must be a number.")
		return entries, 0, false, nil
	}
	return entries, index, true, nil
}

func (m *Menu) remove(ctx context.Context) error {
	_, index, ok, err := m.pickIndex(ctx, "remove")
	if err != nil || !ok {
		return err
	}
	e, err := m.tracker.Remove(ctx, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Removed: %s\n", formatEntry(e))
	return nil
}

func (m *Menu) edit(ctx context.Context) error {
	entries, index, ok, err := m.pickIndex(ctx, "edit")
	if err != nil || !ok {
		return err
	}
	if index < 0 || index >= len(entries) {
		return &core.IndexError{Index: index, Size: len(entries)}
	}
	cur := entries[index]

	var c core.Changes
	fields := []struct {
		name  string
		label string
		dst   **string
	}{
		{"date", fmt.Sprintf("New date (YYYY-MM-DD) [%s]: ", cur.Date), &c.Date},
		{"description", fmt.Sprintf("New description [%s]: ", cur.Description), &c.Description},
		{"tags", fmt.Sprintf("New tags, %q clears [%s]: ", clearTags, cur.Tags), &c.Tags},
		{"amount", fmt.Sprintf("New amount [%s]: ", cur.Amount.Abs()), &c.Amount},
		{"type", fmt.Sprintf("New type (income/expense) [%s]: ", cur.Kind), &c.Kind},
	}

	ask := func(name, label string, dst **string) error {
		v, err := m.prompt(label)
		if err != nil {
			return err
		}
		*dst = editValue(name, v)
		return nil
	}

	for _, f := range fields {
		if err := ask(f.name, f.label, f.dst); err != nil {
			return err
		}
	}
	if c.IsEmpty() {
		fmt.Fprintln(m.out, "Nothing to change.")
		return nil
	}

	for {
		e, err := m.tracker.Edit(ctx, index, c)
		if err == nil {
			fmt.Fprintf(m.out, "Updated: %s\n", formatEntry(e))
			return nil
		}

		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fmt.Fprintf(m.out, "%v\n", err)

		found := false
		for _, f := range fields {
			if f.name != ve.Field {
				continue
			}
			found = true
			if err := ask(f.name, f.label, f.dst); err != nil {
				return err
			}
		}
		if !found {
			return err
		}
	}
}

// editValue maps an edit answer to a change: blank keeps the current value
// and clearTags at the tags prompt removes every tag.
func editValue(field, v string) *string {
	if v == "" {
		return nil
	}
	if field == "tags" && v == clearTags {
		empty := ""
		return &empty
	}
	return &v
}

func formatEntry(e core.Entry) string {
	return fmt.Sprintf("[%d] %s %s %s %s%s", e.Index, e.Date, e.Kind, e.Amount, e.Description, categorySuffix(e))
}

func categorySuffix(e core.Entry) string {
	if e.Category == core.NoCategory {
		return ""
	}
	return " (" + e.Category + ")"
}
