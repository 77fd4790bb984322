package core

import (
	"sort"
	"strings"
	"time"
)

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"

	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByTitle    SortField = "title"
	SortByCategory SortField = "category"
	SortByCreated  SortField = "createdAt"

	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"

	// DefaultPageSize applies when a page size of zero or less is requested.
	DefaultPageSize = 10
)

type (
	// Period names a relative date range used for filtering.
	Period string

	// SortField names a sortable transaction field.
	SortField string

	// SortDirection is asc or desc.
	SortDirection string

	// Page is one window over a derived view, with the quantities a list UI
	// needs alongside the items. Indexes are 1-based and inclusive, clamped
	// to TotalItems.
	Page struct {
		Items      []Transaction `json:"items"`
		Page       int           `json:"page"`
		PageSize   int           `json:"pageSize"`
		TotalItems int           `json:"totalItems"`
		TotalPages int           `json:"totalPages"`
		HasNext    bool          `json:"hasNext"`
		HasPrev    bool          `json:"hasPrev"`
		StartIndex int           `json:"startIndex"`
		EndIndex   int           `json:"endIndex"`
	}

	// Query composes the whole pipeline. Zero values are no-ops for the
	// search and filter stages; zero sort falls back to date descending.
	Query struct {
		Search    string        `json:"search"`
		Type      Type          `json:"type"`
		Category  string        `json:"category"`
		Period    Period        `json:"period"`
		Reference Date          `json:"reference"`
		SortField SortField     `json:"sortField"`
		Direction SortDirection `json:"direction"`
		Page      int           `json:"page"`
		PageSize  int           `json:"pageSize"`
	}
)

// Valid reports whether p names a known period. The empty period is treated
// like "all" everywhere and is valid.
func (p Period) Valid() bool {
	switch p {
	case "", PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return true
	}
	return false
}

// Search keeps transactions whose title, description, or category contains
// the term, case-insensitively. A blank term returns the input unchanged.
func Search(txns []Transaction, term string) []Transaction {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return txns
	}
	var out []Transaction
	for _, txn := range txns {
		if strings.Contains(strings.ToLower(txn.Title), term) ||
			strings.Contains(strings.ToLower(txn.Description), term) ||
			strings.Contains(strings.ToLower(txn.Category), term) {
			out = append(out, txn)
		}
	}
	return out
}

// FilterByType keeps transactions of exactly t. Empty t is a no-op.
func FilterByType(txns []Transaction, t Type) []Transaction {
	if t == "" {
		return txns
	}
	var out []Transaction
	for _, txn := range txns {
		if txn.Type == t {
			out = append(out, txn)
		}
	}
	return out
}

// FilterByCategory keeps transactions of exactly category. Empty is a no-op.
func FilterByCategory(txns []Transaction, category string) []Transaction {
	if category == "" {
		return txns
	}
	var out []Transaction
	for _, txn := range txns {
		if txn.Category == category {
			out = append(out, txn)
		}
	}
	return out
}

// PeriodStart returns the inclusive lower bound of the period containing ref.
// Weeks start on Sunday. The second return is false for "all"/empty, which
// have no bound.
func PeriodStart(p Period, ref Date) (Date, bool) {
	switch p {
	case PeriodToday:
		return ref, true
	case PeriodWeek:
		return Date{Time: ref.AddDate(0, 0, -int(ref.Weekday()))}, true
	case PeriodMonth:
		return NewDate(ref.Year(), int(ref.Month()), 1), true
	case PeriodYear:
		return NewDate(ref.Year(), int(time.January), 1), true
	}
	return Date{}, false
}

// FilterByPeriod keeps transactions dated on or after the start of the named
// period relative to ref. There is no upper bound. "all", empty, and unknown
// periods are no-ops.
func FilterByPeriod(txns []Transaction, p Period, ref Date) []Transaction {
	start, bounded := PeriodStart(p, ref)
	if !bounded {
		return txns
	}
	var out []Transaction
	for _, txn := range txns {
		if !txn.Date.Before(start.Time) {
			out = append(out, txn)
		}
	}
	return out
}

// SortBy returns a sorted copy of the snapshot. The sort is stable; numeric
// fields compare numerically, dates chronologically, strings
// case-insensitively. Unknown fields sort by date.
func SortBy(txns []Transaction, field SortField, dir SortDirection) []Transaction {
	out := append([]Transaction(nil), txns...)
	desc := dir == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		return lessByField(out[i], out[j], field)
	})
	return out
}

func lessByField(a, b Transaction, field SortField) bool {
	switch field {
	case SortByAmount:
		return a.Amount.Cents < b.Amount.Cents
	case SortByTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortByCategory:
		return strings.ToLower(a.Category) < strings.ToLower(b.Category)
	case SortByCreated:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.Date.Before(b.Date.Time)
	}
}

// Paginate returns the raw 1-indexed window [(page-1)*size, page*size).
// It does not clamp; NewPage is the clamping helper.
func Paginate(txns []Transaction, page, pageSize int) []Transaction {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(txns) {
		return nil
	}
	end := start + pageSize
	if end > len(txns) {
		end = len(txns)
	}
	return txns[start:end]
}

// NewPage windows the snapshot and computes the derived quantities. A page
// beyond the available range resets to page 1, so a view never goes blank
// after the collection shrinks; sizes below 1 fall back to DefaultPageSize.
func NewPage(txns []Transaction, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := len(txns)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 || (totalPages > 0 && page > totalPages) {
		page = 1
	}

	items := Paginate(txns, page, pageSize)
	p := Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	if len(items) > 0 {
		p.StartIndex = (page-1)*pageSize + 1
		p.EndIndex = p.StartIndex + len(items) - 1
	}
	return p
}

// Apply runs the full pipeline in its fixed order:
// search, type filter, category filter, period filter, sort, paginate.
func (q Query) Apply(txns []Transaction) Page {
	view := Search(txns, q.Search)
	view = FilterByType(view, q.Type)
	view = FilterByCategory(view, q.Category)
	view = FilterByPeriod(view, q.Period, q.reference())
	view = SortBy(view, q.sortField(), q.direction())
	return NewPage(view, q.Page, q.PageSize)
}

func (q Query) reference() Date {
	if q.Reference.IsZero() {
		return DateOf(time.Now())
	}
	return q.Reference
}

func (q Query) sortField() SortField {
	if q.SortField == "" {
		return SortByDate
	}
	return q.SortField
}

func (q Query) direction() SortDirection {
	if q.Direction == "" {
		return SortDesc
	}
	return q.Direction
}
