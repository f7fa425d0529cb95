package core

import "strings"

// Input carries raw field values exactly as the user typed them.
type Input struct {
	Date        string // YYYY-MM-DD, blank means today
	Description string
	Tags        string
	Amount      string
	Kind        string
}

// Changes carries the fields to replace on an existing transaction. A nil
// field keeps the current value. A non-nil empty Tags clears the tags.
type Changes struct {
	Date        *string
	Description *string
	Tags        *string
	Amount      *string
	Kind        *string
}

// ParseInput validates and normalizes in into a Draft ready to be stored.
func ParseInput(in Input) (Draft, error) {
	var (
		d   Draft
		err error
	)

	if strings.TrimSpace(in.Date) == "" {
		d.Date = Today()
	} else if d.Date, err = ParseDate(in.Date); err != nil {
		return Draft{}, invalid("date", err)
	}

	if d.Description, err = validateDescription(in.Description); err != nil {
		return Draft{}, invalid("description", err)
	}

	kind, err := ParseKind(in.Kind)
	if err != nil {
		return Draft{}, invalid("type", err)
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Draft{}, invalid("amount", err)
	}
	d.Amount = amount.Signed(kind)
	d.Tags = NormalizeTags(in.Tags)

	return d, nil
}

// Apply returns cur with c applied. Every supplied field is validated with
// the same rules as ParseInput; on any error cur is returned unchanged.
func (c Changes) Apply(cur Draft) (Draft, error) {
	next := cur

	if c.Date != nil {
		d, err := ParseDate(*c.Date)
		if err != nil {
			return cur, invalid("date", err)
		}
		next.Date = d
	}

	if c.Description != nil {
		desc, err := validateDescription(*c.Description)
		if err != nil {
			return cur, invalid("description", err)
		}
		next.Description = desc
	}

	if c.Tags != nil {
		next.Tags = NormalizeTags(*c.Tags)
	}

	kind := cur.Amount.Kind()
	if c.Kind != nil {
		k, err := ParseKind(*c.Kind)
		if err != nil {
			return cur, invalid("type", err)
		}
		kind = k
	}

	magnitude := cur.Amount.Abs()
	if c.Amount != nil {
		m, err := ParseAmount(*c.Amount)
		if err != nil {
			return cur, invalid("amount", err)
		}
		magnitude = m
	}
	next.Amount = magnitude.Signed(kind)

	if err := next.Validate(); err != nil {
		return cur, err
	}
	return next, nil
}

// IsEmpty reports whether c changes nothing.
func (c Changes) IsEmpty() bool {
	return c.Date == nil && c.Description == nil && c.Tags == nil && c.Amount == nil && c.Kind == nil
}
