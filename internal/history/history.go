// Package history groups transactions by calendar date for display.
package history

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/smsspend/internal/domain"
)

// Bucket is all transactions sharing one date, in ledger order.
type Bucket struct {
	Date         string               `json:"date"`
	Total        float64              `json:"total"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Group partitions txs by exact date string. Buckets are ordered by date
// descending; within a bucket the input order is preserved.
func Group(txs []domain.Transaction) []Bucket {
	byDate := make(map[string]int)
	buckets := []Bucket{}

	for _, tx := range txs {
		i, ok := byDate[tx.Date]
		if !ok {
			i = len(buckets)
			byDate[tx.Date] = i
			buckets = append(buckets, Bucket{Date: tx.Date})
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date > buckets[j].Date
	})

	for i := range buckets {
		sum := decimal.Zero
		for _, tx := range buckets[i].Transactions {
			sum = sum.Add(decimal.NewFromFloat(tx.Amount))
		}
		buckets[i].Total = sum.InexactFloat64()
	}
	return buckets
}

// Flatten concatenates the buckets' transactions in bucket order.
func Flatten(buckets []Bucket) []domain.Transaction {
	var out []domain.Transaction
	for _, b := range buckets {
		out = append(out, b.Transactions...)
	}
	return out
}
