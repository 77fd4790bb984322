package store

import (
	"sort"
	"time"

	"moneywise/internal/core"
)

// seedTransactions builds the demo dataset new installations start with,
// spread over recent weeks so the dashboard has something to show.
func seedTransactions(now func() time.Time, newID func() string) []core.Transaction {
	type row struct {
		title       string
		description string
		amount      int64
		typ         core.Type
		category    string
		daysAgo     int
	}
	rows := []row{
		{"Salary Payment", "Monthly salary", 5000000, core.Income, "Salary", 2},
		{"Grocery Shopping", "Weekly groceries", 150000, core.Expense, "Food", 3},
		{"Freelance Project", "Website development", 1500000, core.Income, "Freelance", 7},
		{"Electricity Bill", "Monthly electricity", 350000, core.Expense, "Utilities", 9},
		{"Bus Pass", "Monthly commute pass", 120000, core.Expense, "Transportation", 12},
		{"Stock Dividend", "Quarterly dividend", 750000, core.Income, "Investment", 20},
		{"Movie Night", "Cinema tickets", 85000, core.Expense, "Entertainment", 25},
		{"Online Course", "Go programming course", 400000, core.Expense, "Education", 40},
	}

	base := now().UTC()
	items := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		when := base.AddDate(0, 0, -r.daysAgo)
		items = append(items, core.Transaction{
			ID:          newID(),
			Title:       r.title,
			Description: r.description,
			Amount:      core.Money{Cents: r.amount * 100},
			Type:        r.typ,
			Category:    r.category,
			Date:        core.DateOf(when),
			CreatedAt:   when,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}
