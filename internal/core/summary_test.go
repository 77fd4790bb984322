package core

import "testing"

func txn(id string, cents int64, typ Type, category string, date Date) Transaction {
	return Transaction{
		ID:          id,
		Title:       "t-" + id,
		Description: "d-" + id,
		Amount:      Money{Cents: cents},
		Type:        typ,
		Category:    category,
		Date:        date,
	}
}

func TestSummarize(t *testing.T) {
	txns := []Transaction{
		txn("1", 10000, Income, "Salary", NewDate(2024, 1, 1)),
		txn("2", 4000, Expense, "Food", NewDate(2024, 1, 2)),
		txn("3", 6000, Expense, "Transportation", NewDate(2024, 1, 3)),
	}

	s := Summarize(txns)
	if s.TotalIncome.Cents != 10000 {
		t.Fatalf("total income = %d, want 10000", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 10000 {
		t.Fatalf("total expense = %d, want 10000", s.TotalExpense.Cents)
	}
	if s.Balance.Cents != 0 {
		t.Fatalf("balance = %d, want 0", s.Balance.Cents)
	}
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.Balance.Cents != 0 || s.Count != 0 {
		t.Fatalf("empty snapshot must yield zeros, got %+v", s)
	}
}

func TestMonthSummary(t *testing.T) {
	txns := []Transaction{
		txn("1", 1000, Income, "Salary", NewDate(2024, 1, 5)),
		txn("2", 2000, Income, "Bonus", NewDate(2024, 2, 5)),
		txn("3", 500, Expense, "Food", NewDate(2024, 1, 20)),
		txn("4", 700, Expense, "Food", NewDate(2023, 1, 20)), // same month, wrong year
	}

	s := MonthSummary(txns, NewDate(2024, 1, 15))
	if s.TotalIncome.Cents != 1000 || s.TotalExpense.Cents != 500 || s.Count != 2 {
		t.Fatalf("unexpected month summary %+v", s)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txns := []Transaction{
		txn("1", 1000, Expense, "Food", NewDate(2024, 1, 1)),
		txn("2", 5000, Income, "Salary", NewDate(2024, 1, 2)),
		txn("3", 2000, Expense, "Food", NewDate(2024, 1, 3)),
	}

	stats := CategoryBreakdown(txns)
	if len(stats) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(stats))
	}
	if stats[0].Category != "Salary" || stats[0].Total.Cents != 5000 {
		t.Fatalf("expected Salary first (total desc), got %+v", stats[0])
	}
	if stats[1].Category != "Food" || stats[1].Income.Cents != 0 ||
		stats[1].Expense.Cents != 3000 || stats[1].Count != 2 {
		t.Fatalf("unexpected Food group %+v", stats[1])
	}
}

func TestCategoryBreakdownTieKeepsEncounterOrder(t *testing.T) {
	txns := []Transaction{
		txn("1", 1000, Expense, "Food", NewDate(2024, 1, 1)),
		txn("2", 1000, Expense, "Shopping", NewDate(2024, 1, 2)),
	}

	stats := CategoryBreakdown(txns)
	if stats[0].Category != "Food" || stats[1].Category != "Shopping" {
		t.Fatalf("tied totals must keep encounter order, got %+v", stats)
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	if stats := CategoryBreakdown(nil); len(stats) != 0 {
		t.Fatalf("expected no groups, got %v", stats)
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	txns := []Transaction{
		txn("1", 1000, Income, "Salary", NewDate(2024, 1, 1)),
		txn("2", 300, Expense, "Food", NewDate(2024, 1, 15)),
		txn("3", 400, Expense, "Food", NewDate(2024, 2, 1)),
	}

	months := MonthlyBreakdown(txns)
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	jan := months["2024-01"]
	if jan.Income.Cents != 1000 || jan.Expense.Cents != 300 || jan.Count != 2 {
		t.Fatalf("unexpected january stats %+v", jan)
	}
	feb := months["2024-02"]
	if feb.Expense.Cents != 400 || feb.Count != 1 {
		t.Fatalf("unexpected february stats %+v", feb)
	}
}

func TestTopTransactions(t *testing.T) {
	txns := []Transaction{
		txn("a", 100, Expense, "Food", NewDate(2024, 1, 1)),
		txn("b", 300, Expense, "Food", NewDate(2024, 1, 2)),
		txn("c", 300, Income, "Salary", NewDate(2024, 1, 3)), // tie with b
		txn("d", 200, Expense, "Food", NewDate(2024, 1, 4)),
	}

	top := TopTransactions(txns, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	// Descending by amount, tie b/c keeps original order.
	if top[0].ID != "b" || top[1].ID != "c" || top[2].ID != "d" {
		t.Fatalf("unexpected order %s %s %s", top[0].ID, top[1].ID, top[2].ID)
	}

	if got := TopTransactions(txns, 10); len(got) != 4 {
		t.Fatalf("n beyond length must return everything, got %d", len(got))
	}
}

func TestRecentTransactions(t *testing.T) {
	txns := []Transaction{
		txn("old", 100, Expense, "Food", NewDate(2024, 1, 1)),
		txn("new", 100, Expense, "Food", NewDate(2024, 3, 1)),
		txn("mid", 100, Expense, "Food", NewDate(2024, 2, 1)),
	}

	recent := RecentTransactions(txns, 2)
	if len(recent) != 2 || recent[0].ID != "new" || recent[1].ID != "mid" {
		t.Fatalf("unexpected recency order %+v", recent)
	}
}

func TestTrend(t *testing.T) {
	report := Trend(
		Summary{TotalIncome: Money{Cents: 15000}, TotalExpense: Money{Cents: 5000}},
		Summary{TotalIncome: Money{Cents: 10000}, TotalExpense: Money{Cents: 10000}},
	)

	if report.Income.Direction != TrendUp || report.Income.ChangePercent != 50 {
		t.Fatalf("unexpected income trend %+v", report.Income)
	}
	if report.Expense.Direction != TrendDown || report.Expense.ChangePercent != -50 {
		t.Fatalf("unexpected expense trend %+v", report.Expense)
	}
}

// A zero previous period is defined as zero change, never Inf or NaN.
func TestTrendZeroPrevious(t *testing.T) {
	report := Trend(
		Summary{TotalIncome: Money{Cents: 50000}},
		Summary{},
	)

	if report.Income.ChangePercent != 0 {
		t.Fatalf("change percent = %v, want 0", report.Income.ChangePercent)
	}
	if report.Income.Direction != TrendStable {
		t.Fatalf("direction = %s, want stable", report.Income.Direction)
	}
}

func TestTrendEqualPeriods(t *testing.T) {
	s := Summary{TotalIncome: Money{Cents: 100}, TotalExpense: Money{Cents: 100}}
	report := Trend(s, s)
	if report.Income.Direction != TrendStable || report.Expense.Direction != TrendStable {
		t.Fatalf("identical periods must be stable, got %+v", report)
	}
}
