// Package position derives holdings from the per-user transaction log.
package position

import (
	"sort"

	"github.com/jcarver/folio/internal/models"
)

// Aggregate is the derived state of one ticker after folding its transactions.
type Aggregate struct {
	TotalShares       float64
	TotalCost         float64
	AverageSharePrice float64
}

// AggregateTransactions folds a single ticker's transactions into current
// shares, cost basis, and average price.
//
// A buy's cost contribution is its gross value plus the brokerage fee, where
// Fees is a percentage of the gross (10 shares at 100 with a 5% fee cost
// 1050). Sells reduce cost basis at the overall average buy price across ALL
// buy transactions (fees included), not a per-lot or point-in-time price.
// This is average-cost accounting, not FIFO/LIFO lot tracking, and matches
// the behavior of the system this service replaces.
//
// Dividends touch neither shares nor cost. Splits multiply the share count by
// the ratio and leave cost basis unchanged. Totals are clamped at zero, so a
// sell exceeding the held quantity empties the position instead of erroring.
func AggregateTransactions(transactions []models.Transaction) Aggregate {
	if len(transactions) == 0 {
		return Aggregate{}
	}

	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Time.Before(sorted[j].Date.Time)
	})

	// Overall average buy price: sum(gross + fee) / sum(shares) over buys.
	var buyCost, buyShares float64
	for _, tx := range sorted {
		if tx.Type == models.TransactionBuy {
			buyCost += costWithFees(tx)
			buyShares += tx.Shares
		}
	}
	var avgBuyPrice float64
	if buyShares > 0 {
		avgBuyPrice = buyCost / buyShares
	}

	var agg Aggregate
	for _, tx := range sorted {
		switch tx.Type {
		case models.TransactionBuy:
			agg.TotalShares += tx.Shares
			agg.TotalCost += costWithFees(tx)
		case models.TransactionSell:
			agg.TotalShares -= tx.Shares
			agg.TotalCost -= tx.Shares * avgBuyPrice
		case models.TransactionSplit:
			if tx.SplitRatio > 0 {
				agg.TotalShares *= tx.SplitRatio
			}
		case models.TransactionDividend:
			// No effect on shares or cost basis.
		}
		if agg.TotalShares < 0 {
			agg.TotalShares = 0
		}
		if agg.TotalCost < 0 {
			agg.TotalCost = 0
		}
	}

	if agg.TotalShares > 0 {
		agg.AverageSharePrice = agg.TotalCost / agg.TotalShares
	}
	return agg
}

// costWithFees is a buy's gross value plus the brokerage fee. Fees is a
// percentage of the gross trade value, not an absolute amount.
func costWithFees(tx models.Transaction) float64 {
	gross := tx.Shares * tx.SharePrice
	return gross + gross*tx.Fees/100
}
