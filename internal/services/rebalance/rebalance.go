// Package rebalance computes buy-only rebalancing recommendations.
package rebalance

import (
	"sort"

	"github.com/jcarver/folio/internal/models"
)

// minBuyAmount is the floor below which a scaled buy is dropped rather than
// recommended.
const minBuyAmount = 1.0

// Recommend distributes investmentAmount across underweight positions.
//
// Each position's deficit is measured against the future portfolio value
// (current total plus the new investment): deficit = target% of futureValue
// minus current value. If the summed deficits exceed the investment, every
// buy is scaled down by the same factor, so no position is favored. Buys are
// never negative: overweight positions are simply left alone, selling is out
// of scope.
func Recommend(items []models.StrategyItem, investmentAmount float64) []models.Recommendation {
	if investmentAmount <= 0 || len(items) == 0 {
		return []models.Recommendation{}
	}

	var currentTotal float64
	for i := range items {
		currentTotal += items[i].CurrentValue
	}
	futureValue := currentTotal + investmentAmount

	type deficitRow struct {
		ticker  string
		deficit float64
	}
	var rows []deficitRow
	var totalDeficit float64
	for i := range items {
		deficit := items[i].TargetPercentage/100*futureValue - items[i].CurrentValue
		if deficit <= 0 {
			continue
		}
		rows = append(rows, deficitRow{ticker: items[i].Ticker, deficit: deficit})
		totalDeficit += deficit
	}
	if totalDeficit <= 0 {
		return []models.Recommendation{}
	}

	scalingFactor := 1.0
	if investmentAmount < totalDeficit {
		scalingFactor = investmentAmount / totalDeficit
	}

	recs := make([]models.Recommendation, 0, len(rows))
	for _, row := range rows {
		buy := row.deficit * scalingFactor
		if buy < minBuyAmount {
			continue
		}
		recs = append(recs, models.Recommendation{
			Ticker:    row.ticker,
			BuyAmount: buy,
			Deficit:   row.deficit,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].BuyAmount > recs[j].BuyAmount
	})
	return recs
}

// Actions describes every position's drift from target, without requiring an
// investment amount. Amount is the value to move toward target: positive
// means buy, negative means the position holds too much.
func Actions(items []models.StrategyItem) []models.RebalanceAction {
	var currentTotal float64
	for i := range items {
		currentTotal += items[i].CurrentValue
	}

	actions := make([]models.RebalanceAction, 0, len(items))
	for i := range items {
		item := items[i]
		drift := item.CurrentPercentage - item.TargetPercentage
		actions = append(actions, models.RebalanceAction{
			Ticker:            item.Ticker,
			Status:            models.StatusForDifference(drift),
			CurrentPercentage: item.CurrentPercentage,
			TargetPercentage:  item.TargetPercentage,
			DriftPercentage:   drift,
			Amount:            item.TargetPercentage/100*currentTotal - item.CurrentValue,
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Amount > actions[j].Amount
	})
	return actions
}
