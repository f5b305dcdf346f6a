// Package stats derives dashboard figures from a transaction collection.
// Nothing is cached: every call recomputes from the slice it is given.
package stats

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/smsspend/internal/domain"
)

// WeekDays is the length of the weekly series.
const WeekDays = 7

// ChartLabelLayout formats DailyTotal.Label; Date keeps domain.DateLayout.
const ChartLabelLayout = "01/02"

// DailyTotal is one point of the weekly series.
type DailyTotal struct {
	Date   string  `json:"date"`  // YYYY-MM-DD
	Label  string  `json:"label"` // MM/DD chart label
	Amount float64 `json:"amount"`
}

// CategoryTotal is the amount spent under one category label.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// Dashboard is the derived summary of a collection as of one calendar day.
type Dashboard struct {
	Today            string          `json:"today"`
	TotalSpent       float64         `json:"total"`
	TransactionCount int             `json:"count"`
	TodaySpent       float64         `json:"todayTotal"`
	WeeklySeries     []DailyTotal    `json:"weeklySeries"`
	Categories       []CategoryTotal `json:"categories"`
}

// Today returns the local calendar date of now.
func Today(now time.Time) civil.Date {
	return civil.DateOf(now)
}

// Compute builds the dashboard for txs as of today. Dates are compared as
// plain YYYY-MM-DD strings.
func Compute(txs []domain.Transaction, today civil.Date) Dashboard {
	todayKey := today.String()

	total := decimal.Zero
	todayTotal := decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		total = total.Add(amount)
		if tx.Date == todayKey {
			todayTotal = todayTotal.Add(amount)
		}
	}

	return Dashboard{
		Today:            todayKey,
		TotalSpent:       total.InexactFloat64(),
		TransactionCount: len(txs),
		TodaySpent:       todayTotal.InexactFloat64(),
		WeeklySeries:     WeeklySeries(txs, today),
		Categories:       ByCategory(txs),
	}
}

// WeeklySeries returns exactly WeekDays entries, from six days before today
// through today, ascending. Days without transactions are zero.
func WeeklySeries(txs []domain.Transaction, today civil.Date) []DailyTotal {
	start := today.AddDays(-(WeekDays - 1))

	index := make(map[string]int, WeekDays)
	sums := make([]decimal.Decimal, WeekDays)
	days := make([]civil.Date, WeekDays)
	for i := 0; i < WeekDays; i++ {
		d := start.AddDays(i)
		days[i] = d
		sums[i] = decimal.Zero
		index[d.String()] = i
	}

	for _, tx := range txs {
		if i, ok := index[tx.Date]; ok {
			sums[i] = sums[i].Add(decimal.NewFromFloat(tx.Amount))
		}
	}

	series := make([]DailyTotal, WeekDays)
	for i, d := range days {
		series[i] = DailyTotal{
			Date:   d.String(),
			Label:  chartLabel(d),
			Amount: sums[i].InexactFloat64(),
		}
	}
	return series
}

// ByCategory sums txs per category label, largest first, then by name.
func ByCategory(txs []domain.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, tx := range txs {
		sums[tx.Category] = sums[tx.Category].Add(decimal.NewFromFloat(tx.Amount))
		counts[tx.Category]++
	}

	out := make([]CategoryTotal, 0, len(sums))
	for cat, sum := range sums {
		out = append(out, CategoryTotal{Category: cat, Amount: sum.InexactFloat64(), Count: counts[cat]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func chartLabel(d civil.Date) string {
	return d.In(time.UTC).Format(ChartLabelLayout)
}
