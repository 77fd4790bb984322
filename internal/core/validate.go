package core

import (
	"sort"
	"strings"
)

// FieldErrors maps a field name to a human-readable validation message.
// An empty map means the draft is valid. It implements error so callers can
// surface it through the usual error path and recover the per-field messages
// with errors.As.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a draft against the field rules. Every applicable rule is
// checked independently so the caller gets all messages at once; the
// category-for-type rule only fires once the type itself is valid.
func Validate(d Draft) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = "Description is required"
	}
	if !d.Amount.Positive() {
		errs["amount"] = "Amount must be greater than 0"
	}
	switch {
	case d.Type == "":
		errs["type"] = "Transaction type is required"
	case !d.Type.Valid():
		errs["type"] = "Transaction type must be income or expense"
	}
	switch {
	case d.Category == "":
		errs["category"] = "Category is required"
	case d.Type.Valid() && !ValidCategory(d.Type, d.Category):
		errs["category"] = "Invalid category for " + string(d.Type) + " transaction"
	}
	if d.Date.IsZero() {
		errs["date"] = "Date is required"
	}

	return errs
}
