package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the only accepted textual date format.
const DateLayout = "2006-01-02"

const maxDescriptionLen = 200

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Listing orders understood by storage adapters.
const (
	OrderByDateID Order = iota
	OrderByID
)

type (
	Kind string

	Order int

	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. Positive is income, negative is expense.
	Money struct {
		Cents int64
	}

	// Transaction is a persisted row. ID is storage-assigned and never leaves the core.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Tags        string // normalized, comma separated
		Amount      Money
	}

	// Draft is a validated transaction that has not been given an ID yet.
	Draft struct {
		Date        Date
		Description string
		Tags        string
		Amount      Money
	}

	// Entry is a transaction as the interface layer sees it: addressed by its
	// position in the current listing, never by ID.
	Entry struct {
		Index       int
		Date        Date
		Description string
		Category    string
		Tags        string
		Amount      Money
		Kind        Kind
	}
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("transaction not found")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrZeroAmount       = errors.New("amount must not be zero")
	ErrInvalidKind      = errors.New("type must be 'income' or 'expense'")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = fmt.Errorf("description too long (max %d characters)", maxDescriptionLen)
	ErrDescriptionUTF8  = errors.New("description is not valid UTF-8")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IndexError reports an index that does not resolve in the current listing.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	if e.Size == 0 {
		return fmt.Sprintf("index %d out of range: no transactions", e.Index)
	}
	return fmt.Sprintf("index %d out of range: must be between 0 and %d", e.Index, e.Size-1)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrNotFound
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	y, m, d := time.Now().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses s with DateLayout. Anything time.Parse rejects, including
// impossible days like 2024-02-30, is an ErrInvalidDate.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

// Signed applies the sign implied by k to the magnitude of m.
func (m Money) Signed(k Kind) Money {
	abs := m.Abs()
	if k == Expense {
		return Money{Cents: -abs.Cents}
	}
	return abs
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Kind derives income/expense from the sign.
func (m Money) Kind() Kind {
	if m.Cents < 0 {
		return Expense
	}
	return Income
}

func (m Money) Validate() error {
	if m.Cents == 0 {
		return ErrZeroAmount
	}
	return nil
}

func validateDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyDescription
	}
	if !utf8.ValidString(s) {
		return "", ErrDescriptionUTF8
	}
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return "", ErrDescriptionLong
	}
	return s, nil
}

func (d Draft) Validate() error {
	if err := d.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if _, err := validateDescription(d.Description); err != nil {
		return invalid("description", err)
	}
	if err := d.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

// Category returns the category derived from the tags, or NoCategory.
func (t Transaction) Category() string {
	c, _ := ExtractCategory(t.Tags)
	return c
}

func (t Transaction) Kind() Kind {
	return t.Amount.Kind()
}

// Draft returns the mutable fields of t.
func (t Transaction) Draft() Draft {
	return Draft{Date: t.Date, Description: t.Description, Tags: t.Tags, Amount: t.Amount}
}

// Entry pairs t with its listing index.
func (t Transaction) Entry(index int) Entry {
	return Entry{
		Index:       index,
		Date:        t.Date,
		Description: t.Description,
		Category:    t.Category(),
		Tags:        t.Tags,
		Amount:      t.Amount,
		Kind:        t.Kind(),
	}
}
