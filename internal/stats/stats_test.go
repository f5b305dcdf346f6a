package stats

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/smsspend/internal/domain"
)

var may12 = civil.Date{Year: 2024, Month: time.May, Day: 12}

func TestCompute_Empty(t *testing.T) {
	d := Compute(nil, may12)

	assert.Equal(t, "2024-05-12", d.Today)
	assert.Zero(t, d.TotalSpent)
	assert.Zero(t, d.TransactionCount)
	assert.Zero(t, d.TodaySpent)
	require.Len(t, d.WeeklySeries, WeekDays)
	for _, p := range d.WeeklySeries {
		assert.Zero(t, p.Amount)
	}
	assert.Empty(t, d.Categories)
}

func TestCompute_Totals(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Amount: 24.50, Date: "2024-05-12", Merchant: "Starbucks", Category: "Food"},
		{ID: "2", Amount: 0.10, Date: "2024-05-12", Merchant: "Kiosk", Category: "Food"},
		{ID: "3", Amount: 0.20, Date: "2024-05-11", Merchant: "Bus", Category: "Transport"},
		{ID: "4", Amount: 100, Date: "2023-01-01", Merchant: "Old", Category: "Bills"},
	}

	d := Compute(txs, may12)

	assert.Equal(t, 124.8, d.TotalSpent)
	assert.Equal(t, 4, d.TransactionCount)
	assert.Equal(t, 24.6, d.TodaySpent)
}

func TestWeeklySeries_Window(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Amount: 5, Date: "2024-05-12"},
		{ID: "2", Amount: 7, Date: "2024-05-06"},
		{ID: "3", Amount: 3, Date: "2024-05-06"},
		{ID: "4", Amount: 11, Date: "2024-05-05"}, // just outside
		{ID: "5", Amount: 13, Date: "2024-05-13"}, // tomorrow
	}

	series := WeeklySeries(txs, may12)
	require.Len(t, series, WeekDays)

	wantDates := []string{"2024-05-06", "2024-05-07", "2024-05-08", "2024-05-09", "2024-05-10", "2024-05-11", "2024-05-12"}
	wantAmounts := []float64{10, 0, 0, 0, 0, 0, 5}
	for i, p := range series {
		assert.Equal(t, wantDates[i], p.Date)
		assert.Equal(t, wantAmounts[i], p.Amount, p.Date)
	}
	assert.Equal(t, "05/06", series[0].Label)
	assert.Equal(t, "05/12", series[6].Label)
	for _, p := range series {
		d, err := time.Parse(domain.DateLayout, p.Date)
		require.NoError(t, err)
		assert.Equal(t, d.Format(ChartLabelLayout), p.Label)
	}
}

func TestWeeklySeries_CrossesMonthAndYear(t *testing.T) {
	series := WeeklySeries(nil, civil.Date{Year: 2024, Month: time.January, Day: 3})
	require.Len(t, series, WeekDays)
	assert.Equal(t, "2023-12-28", series[0].Date)
	assert.Equal(t, "2024-01-03", series[6].Date)
}

func TestWeeklySeries_SumMatchesWindow(t *testing.T) {
	var txs []domain.Transaction
	for i := 0; i < 30; i++ {
		d := may12.AddDays(-i)
		txs = append(txs, domain.Transaction{ID: d.String(), Amount: float64(i) + 0.25, Date: d.String()})
	}

	series := WeeklySeries(txs, may12)

	var seriesSum, windowSum float64
	for _, p := range series {
		seriesSum += p.Amount
	}
	for i := 0; i < WeekDays; i++ {
		windowSum += float64(i) + 0.25
	}
	assert.InDelta(t, windowSum, seriesSum, 1e-9)
}

func TestByCategory(t *testing.T) {
	txs := []domain.Transaction{
		{Amount: 5, Category: "Food"},
		{Amount: 10, Category: "Bills"},
		{Amount: 5, Category: "Food"},
		{Amount: 2, Category: "Health"},
		{Amount: 2, Category: "Another"},
	}

	got := ByCategory(txs)
	require.Len(t, got, 4)
	assert.Equal(t, CategoryTotal{Category: "Bills", Amount: 10, Count: 1}, got[0])
	assert.Equal(t, CategoryTotal{Category: "Food", Amount: 10, Count: 2}, got[1])
	assert.Equal(t, "Another", got[2].Category)
	assert.Equal(t, "Health", got[3].Category)
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 5, 12, 0, 30, 0, 0, time.Local)
	assert.Equal(t, may12, Today(now))
}
