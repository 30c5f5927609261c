package rebalance

import (
	"math"
	"testing"

	"github.com/jcarver/folio/internal/models"
)

func item(ticker string, value, currentPct, targetPct float64) models.StrategyItem {
	return models.StrategyItem{
		Ticker:            ticker,
		CurrentValue:      value,
		CurrentPercentage: currentPct,
		TargetPercentage:  targetPct,
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestRecommend_NewHoldingAbsorbsInvestment(t *testing.T) {
	// A holds the entire portfolio, B has a target but no position.
	// Future value 3310; A's deficit is 1655-2310 < 0, B's is 1655.
	// Deficits exceed the investment so B's buy scales to the full 1000.
	items := []models.StrategyItem{
		item("A", 2310, 100, 50),
		item("B", 0, 0, 50),
	}

	recs := Recommend(items, 1000)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Ticker != "B" {
		t.Errorf("expected buy for B, got %s", recs[0].Ticker)
	}
	if !approxEqual(recs[0].BuyAmount, 1000) {
		t.Errorf("expected buy of 1000, got %v", recs[0].BuyAmount)
	}
}

func TestRecommend_DeficitsWithinInvestmentUnscaled(t *testing.T) {
	// Future value 2000. A deficit: 1000-900=100, B deficit: 1000-900=100.
	// Total deficit 200 <= investment 200, scaling factor stays 1.
	items := []models.StrategyItem{
		item("A", 900, 50, 50),
		item("B", 900, 50, 50),
	}

	recs := Recommend(items, 200)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if !approxEqual(rec.BuyAmount, 100) {
			t.Errorf("%s: expected buy of 100, got %v", rec.Ticker, rec.BuyAmount)
		}
		if !approxEqual(rec.BuyAmount, rec.Deficit) {
			t.Errorf("%s: unscaled buy should equal deficit", rec.Ticker)
		}
	}
}

func TestRecommend_ScalesProportionally(t *testing.T) {
	// Future value 1100. A deficit: 550-0=550, B deficit: 550-0=550.
	// Total deficit 1100 > investment 100, so each scales to 50.
	items := []models.StrategyItem{
		item("A", 0, 0, 50),
		item("B", 0, 0, 50),
	}
	// No current holdings at all, so currentTotal comes only from items.
	recs := Recommend(items, 100)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	var total float64
	for _, rec := range recs {
		if !approxEqual(rec.BuyAmount, 50) {
			t.Errorf("%s: expected scaled buy of 50, got %v", rec.Ticker, rec.BuyAmount)
		}
		total += rec.BuyAmount
	}
	if !approxEqual(total, 100) {
		t.Errorf("scaled buys should sum to the investment, got %v", total)
	}
}

func TestRecommend_DropsSubDollarBuys(t *testing.T) {
	// B's scaled buy lands under 1.00 and is dropped.
	items := []models.StrategyItem{
		item("A", 0, 0, 99.9),
		item("B", 0, 0, 0.1),
	}

	recs := Recommend(items, 500)
	for _, rec := range recs {
		if rec.BuyAmount < 1.0 {
			t.Errorf("%s: sub-dollar buy %v should have been dropped", rec.Ticker, rec.BuyAmount)
		}
	}
}

func TestRecommend_SortedByBuyAmountDescending(t *testing.T) {
	items := []models.StrategyItem{
		item("SMALL", 0, 0, 10),
		item("BIG", 0, 0, 60),
		item("MID", 0, 0, 30),
	}

	recs := Recommend(items, 1000)
	for i := 1; i < len(recs); i++ {
		if recs[i].BuyAmount > recs[i-1].BuyAmount {
			t.Errorf("recommendations not sorted descending at index %d", i)
		}
	}
	if len(recs) > 0 && recs[0].Ticker != "BIG" {
		t.Errorf("expected BIG first, got %s", recs[0].Ticker)
	}
}

func TestRecommend_NoInvestmentOrNoDeficit(t *testing.T) {
	items := []models.StrategyItem{item("A", 1000, 100, 50)}

	if recs := Recommend(items, 0); len(recs) != 0 {
		t.Errorf("expected no recommendations for zero investment, got %d", len(recs))
	}
	if recs := Recommend(nil, 1000); len(recs) != 0 {
		t.Errorf("expected no recommendations for empty items, got %d", len(recs))
	}
	// A is far overweight; a tiny investment leaves no positive deficits.
	overweight := []models.StrategyItem{item("A", 1000, 100, 0)}
	if recs := Recommend(overweight, 10); len(recs) != 0 {
		t.Errorf("expected no recommendations without deficits, got %d", len(recs))
	}
}

func TestActions_StatusAndAmounts(t *testing.T) {
	items := []models.StrategyItem{
		item("A", 750, 75, 50),
		item("B", 250, 25, 50),
	}

	actions := Actions(items)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}

	// Sorted by amount descending: B (buy 250) before A (sell 250).
	if actions[0].Ticker != "B" || actions[0].Status != models.StatusUnderweight {
		t.Errorf("expected B underweight first, got %+v", actions[0])
	}
	if !approxEqual(actions[0].Amount, 250) {
		t.Errorf("B: expected amount 250, got %v", actions[0].Amount)
	}
	if actions[1].Ticker != "A" || actions[1].Status != models.StatusOverweight {
		t.Errorf("expected A overweight second, got %+v", actions[1])
	}
	if !approxEqual(actions[1].Amount, -250) {
		t.Errorf("A: expected amount -250, got %v", actions[1].Amount)
	}
}

func TestActions_BalancedWithinTolerance(t *testing.T) {
	items := []models.StrategyItem{item("A", 500, 50.05, 50)}

	actions := Actions(items)
	if actions[0].Status != models.StatusBalanced {
		t.Errorf("0.05pp drift should be balanced, got %s", actions[0].Status)
	}
}
