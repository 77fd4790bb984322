package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

const dateLayout = "2006-01-02"

type (
	// Type discriminates income from expense records.
	Type string

	// Date is a calendar date. The time-of-day part is always midnight UTC;
	// it serializes as ISO "YYYY-MM-DD".
	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record.
	Transaction struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Type        Type      `json:"type"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Draft carries the user-editable fields of a transaction, before the
	// store assigns ID and CreatedAt.
	Draft struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Type        Type   `json:"type"`
		Category    string `json:"category"`
		Date        Date   `json:"date"`
	}

	// Patch is a partial draft for updates. Nil fields keep the value the
	// stored record already has.
	Patch struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Amount      *Money  `json:"amount"`
		Type        *Type   `json:"type"`
		Category    *string `json:"category"`
		Date        *Date   `json:"date"`
	}
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrInvalidDate = errors.New("invalid date")
)

// categories maps each transaction type to its allowed category names.
// The category of every stored record must belong to the set of its type.
var categories = map[Type][]string{
	Income:  {"Salary", "Freelance", "Investment", "Bonus", "Gift", "Other"},
	Expense: {"Food", "Transportation", "Shopping", "Utilities", "Healthcare", "Entertainment", "Education", "Other"},
}

// Valid reports whether t is one of the two known transaction types.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// CategoriesFor returns a copy of the allowed category names for a type.
// Unknown types yield nil.
func CategoriesFor(t Type) []string {
	set, ok := categories[t]
	if !ok {
		return nil
	}
	return append([]string(nil), set...)
}

// ValidCategory reports whether category belongs to the set for t.
func ValidCategory(t Type, category string) bool {
	for _, c := range categories[t] {
		if c == category {
			return true
		}
	}
	return false
}

// Draft returns the editable fields of an existing record.
func (t Transaction) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Date:        t.Date,
	}
}

// Apply merges the patch into d, replacing only the fields the patch sets.
func (p Patch) Apply(d Draft) Draft {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	return d
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// MonthKey returns the "YYYY-MM" grouping key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// SameMonth reports whether two dates fall in the same calendar month and year.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// String returns the ISO form of the date, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON serializes the date as "YYYY-MM-DD"; the zero date becomes "".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or an empty string (zero date).
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
