package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTypeValid(t *testing.T) {
	if !Income.Valid() || !Expense.Valid() {
		t.Fatal("income and expense must be valid types")
	}
	if Type("transfer").Valid() {
		t.Fatal("unknown type must be invalid")
	}
}

func TestCategoriesFor(t *testing.T) {
	income := CategoriesFor(Income)
	if len(income) != 6 {
		t.Fatalf("expected 6 income categories, got %d", len(income))
	}
	expense := CategoriesFor(Expense)
	if len(expense) != 8 {
		t.Fatalf("expected 8 expense categories, got %d", len(expense))
	}
	if CategoriesFor(Type("other")) != nil {
		t.Fatal("unknown type should have no categories")
	}

	// Returned slice is a copy; mutating it must not leak into the table.
	income[0] = "Hacked"
	if CategoriesFor(Income)[0] != "Salary" {
		t.Fatal("CategoriesFor must return a copy")
	}
}

func TestValidCategory(t *testing.T) {
	cases := []struct {
		typ      Type
		category string
		ok       bool
	}{
		{Income, "Salary", true},
		{Income, "Food", false},
		{Expense, "Food", true},
		{Expense, "Salary", false},
		{Income, "Other", true},
		{Expense, "Other", true},
		{Type("bogus"), "Other", false},
	}
	for i, tc := range cases {
		if got := ValidCategory(tc.typ, tc.category); got != tc.ok {
			t.Fatalf("case %d: ValidCategory(%s, %s) = %v, want %v", i, tc.typ, tc.category, got, tc.ok)
		}
	}
}

func TestPatchApply(t *testing.T) {
	base := Draft{
		Title:       "Groceries",
		Description: "Weekly shop",
		Amount:      Money{Cents: 15000000},
		Type:        Expense,
		Category:    "Food",
		Date:        NewDate(2024, 1, 2),
	}

	title := "Groceries (updated)"
	amount := Money{Cents: 20000000}
	merged := Patch{Title: &title, Amount: &amount}.Apply(base)

	if merged.Title != title {
		t.Fatalf("expected patched title, got %q", merged.Title)
	}
	if merged.Amount.Cents != 20000000 {
		t.Fatalf("expected patched amount, got %d", merged.Amount.Cents)
	}
	if merged.Description != base.Description || merged.Category != base.Category {
		t.Fatal("unpatched fields must keep their values")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 1, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-01-15"` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2024, 3, 31)
	if d.MonthKey() != "2024-03" {
		t.Fatalf("unexpected month key %q", d.MonthKey())
	}
	if !d.SameMonth(NewDate(2024, 3, 1)) {
		t.Fatal("dates in the same month must match")
	}
	if d.SameMonth(NewDate(2023, 3, 31)) {
		t.Fatal("same month of a different year must not match")
	}

	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Fatal("expected error for impossible month")
	}
	got, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parse result %v", got)
	}
}
