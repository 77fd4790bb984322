package core

import "sort"

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type (
	// TrendDirection classifies a period-over-period change.
	TrendDirection string

	// Summary holds the income/expense totals over a collection snapshot.
	Summary struct {
		TotalIncome  Money `json:"totalIncome"`
		TotalExpense Money `json:"totalExpense"`
		Balance      Money `json:"balance"`
		Count        int   `json:"count"`
	}

	// CategoryStat aggregates one category's transactions.
	CategoryStat struct {
		Category string `json:"category"`
		Income   Money  `json:"income"`
		Expense  Money  `json:"expense"`
		Total    Money  `json:"total"`
		Count    int    `json:"count"`
	}

	// MonthStat aggregates one calendar month ("YYYY-MM" key).
	MonthStat struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Count   int   `json:"count"`
	}

	// TrendEntry compares one total across two periods.
	TrendEntry struct {
		Current       Money          `json:"current"`
		Previous      Money          `json:"previous"`
		ChangePercent float64        `json:"changePercent"`
		Direction     TrendDirection `json:"direction"`
	}

	// TrendReport compares income and expense totals independently.
	TrendReport struct {
		Income  TrendEntry `json:"income"`
		Expense TrendEntry `json:"expense"`
	}
)

// TotalByType sums the amounts of the transactions matching t.
func TotalByType(txns []Transaction, t Type) Money {
	var total Money
	for _, txn := range txns {
		if txn.Type == t {
			total = total.Plus(txn.Amount)
		}
	}
	return total
}

// Summarize computes income/expense totals, balance, and count over a
// snapshot. An empty snapshot yields all zeros.
func Summarize(txns []Transaction) Summary {
	income := TotalByType(txns, Income)
	expense := TotalByType(txns, Expense)
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Minus(expense),
		Count:        len(txns),
	}
}

// MonthSummary restricts the snapshot to the calendar month and year of ref
// before summarizing.
func MonthSummary(txns []Transaction, ref Date) Summary {
	var scoped []Transaction
	for _, txn := range txns {
		if txn.Date.SameMonth(ref) {
			scoped = append(scoped, txn)
		}
	}
	return Summarize(scoped)
}

// CategoryBreakdown groups the snapshot by category, sorted by total amount
// descending. Ties keep the order in which the categories were first seen.
func CategoryBreakdown(txns []Transaction) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat

	for _, txn := range txns {
		i, ok := index[txn.Category]
		if !ok {
			i = len(stats)
			index[txn.Category] = i
			stats = append(stats, CategoryStat{Category: txn.Category})
		}
		switch txn.Type {
		case Income:
			stats[i].Income = stats[i].Income.Plus(txn.Amount)
		case Expense:
			stats[i].Expense = stats[i].Expense.Plus(txn.Amount)
		}
		stats[i].Total = stats[i].Income.Plus(stats[i].Expense)
		stats[i].Count++
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Total.Cents > stats[b].Total.Cents
	})
	return stats
}

// MonthlyBreakdown accumulates income, expense, and count per "YYYY-MM" key.
func MonthlyBreakdown(txns []Transaction) map[string]MonthStat {
	months := make(map[string]MonthStat)
	for _, txn := range txns {
		key := txn.Date.MonthKey()
		stat := months[key]
		switch txn.Type {
		case Income:
			stat.Income = stat.Income.Plus(txn.Amount)
		case Expense:
			stat.Expense = stat.Expense.Plus(txn.Amount)
		}
		stat.Count++
		months[key] = stat
	}
	return months
}

// TopTransactions returns the n largest transactions by amount, descending.
// Ties keep their original order.
func TopTransactions(txns []Transaction, n int) []Transaction {
	sorted := SortBy(txns, SortByAmount, SortDesc)
	return headOf(sorted, n)
}

// RecentTransactions returns the n transactions with the most recent dates,
// descending. Ties keep their original order.
func RecentTransactions(txns []Transaction, n int) []Transaction {
	sorted := SortBy(txns, SortByDate, SortDesc)
	return headOf(sorted, n)
}

func headOf(txns []Transaction, n int) []Transaction {
	if n < 0 {
		n = 0
	}
	if n > len(txns) {
		n = len(txns)
	}
	return txns[:n]
}

// Trend compares income and expense totals of two period summaries. A zero
// previous total is defined as zero change (stable), never a division error.
func Trend(current, previous Summary) TrendReport {
	return TrendReport{
		Income:  trendEntry(current.TotalIncome, previous.TotalIncome),
		Expense: trendEntry(current.TotalExpense, previous.TotalExpense),
	}
}

func trendEntry(current, previous Money) TrendEntry {
	entry := TrendEntry{Current: current, Previous: previous, Direction: TrendStable}
	if previous.Cents != 0 {
		entry.ChangePercent = (current.Float() - previous.Float()) / previous.Float() * 100
	}
	if entry.ChangePercent > 0 {
		entry.Direction = TrendUp
	} else if entry.ChangePercent < 0 {
		entry.Direction = TrendDown
	}
	return entry
}
