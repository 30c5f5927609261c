// Package risk scores portfolio diversification with a fixed rubric.
package risk

import (
	"fmt"

	"github.com/jcarver/folio/internal/models"
)

// Score applies the diversification rubric to a set of positions.
//
// Three components, max 10 points total:
//
//	asset count:    fewer than 3 holdings 0, 3 to 5 holdings 1.5, more than 5 holdings 3
//	concentration:  largest weight over 50% 0, over 25% 2, otherwise 4
//	asset classes:  1 class 1, 2 classes 2, 3 or more 3
//
// Total >= 8 is HEALTHY, >= 5 MODERATE, below that CRITICAL. The breakpoints
// are behavioral contract, not tunable parameters.
func Score(positions []models.Position) models.DiversificationScore {
	var score models.DiversificationScore

	count := len(positions)
	switch {
	case count > 5:
		score.AssetCountScore = 3
	case count >= 3:
		score.AssetCountScore = 1.5
	default:
		score.AssetCountScore = 0
	}

	topWeight := topWeightPct(positions)
	switch {
	case topWeight > 50:
		score.ConcentrationScore = 0
	case topWeight > 25:
		score.ConcentrationScore = 2
	default:
		score.ConcentrationScore = 4
	}

	classes := assetClassCount(positions)
	switch {
	case classes >= 3:
		score.AssetClassScore = 3
	case classes == 2:
		score.AssetClassScore = 2
	default:
		score.AssetClassScore = 1
	}

	score.Total = score.AssetCountScore + score.ConcentrationScore + score.AssetClassScore
	switch {
	case score.Total >= 8:
		score.Label = models.RiskHealthy
	case score.Total >= 5:
		score.Label = models.RiskModerate
	default:
		score.Label = models.RiskCritical
	}
	return score
}

// Report combines the rubric score with concentration detail for the risk
// endpoint.
func Report(positions []models.Position) models.RiskReport {
	report := models.RiskReport{Score: Score(positions)}

	var total float64
	for i := range positions {
		total += positions[i].TotalCost
	}

	var topTicker string
	var topWeight, hhi float64
	if total > 0 {
		for i := range positions {
			weight := positions[i].TotalCost / total
			hhi += weight * weight
			if weight*100 > topWeight {
				topWeight = weight * 100
				topTicker = positions[i].Ticker
			}
		}
	}

	report.Concentration = models.ConcentrationDetail{
		TopTicker:    topTicker,
		TopWeightPct: topWeight,
		HHI:          hhi,
		HoldingCount: len(positions),
		AssetClasses: assetClassCount(positions),
	}
	return report
}

// Insights produces the human-readable flags shown alongside the portfolio.
func Insights(positions []models.Position) []string {
	var insights []string

	if len(positions) > 0 && len(positions) < 3 {
		insights = append(insights, fmt.Sprintf("Portfolio holds only %d asset(s); consider diversifying across more holdings", len(positions)))
	}
	if top := topWeightPct(positions); top > 50 {
		insights = append(insights, fmt.Sprintf("Largest position accounts for %.1f%% of portfolio value", top))
	}
	if len(positions) > 0 && assetClassCount(positions) == 1 {
		insights = append(insights, "All holdings share a single asset class")
	}

	var drifted int
	for i := range positions {
		if positions[i].TargetAllocationPercentage > 0 && positions[i].RebalancingStatus != models.StatusBalanced {
			drifted++
		}
	}
	if drifted > 0 {
		insights = append(insights, fmt.Sprintf("%d position(s) have drifted outside the allocation tolerance", drifted))
	}
	return insights
}

func topWeightPct(positions []models.Position) float64 {
	var total, top float64
	for i := range positions {
		total += positions[i].TotalCost
	}
	if total <= 0 {
		return 0
	}
	for i := range positions {
		if weight := 100 * positions[i].TotalCost / total; weight > top {
			top = weight
		}
	}
	return top
}

func assetClassCount(positions []models.Position) int {
	classes := make(map[string]bool)
	for i := range positions {
		classes[models.NormalizeSecurityType(positions[i].SecurityType)] = true
	}
	return len(classes)
}
