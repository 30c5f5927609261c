package models

// RebalancingStatus classifies a position's drift from its target allocation.
type RebalancingStatus string

const (
	StatusBalanced    RebalancingStatus = "Balanced"
	StatusOverweight  RebalancingStatus = "Overweight"
	StatusUnderweight RebalancingStatus = "Underweight"
)

// AllocationTolerance is the percentage-point band within which a position
// counts as balanced.
const AllocationTolerance = 0.1

// StatusForDifference derives the rebalancing status from the signed
// current-minus-target difference.
func StatusForDifference(diff float64) RebalancingStatus {
	switch {
	case diff > AllocationTolerance:
		return StatusOverweight
	case diff < -AllocationTolerance:
		return StatusUnderweight
	default:
		return StatusBalanced
	}
}

// Position is the derived holding for one ticker, recomputed from the full
// transaction list on every read. Never persisted as source of truth.
type Position struct {
	Ticker                      string            `json:"ticker"`
	CompanyName                 string            `json:"companyName,omitempty"`
	SecurityType                string            `json:"securityType"`
	TotalShares                 float64           `json:"totalShares"`
	TotalCost                   float64           `json:"totalCost"`
	AverageSharePrice           float64           `json:"averageSharePrice"`
	CurrentAllocationPercentage float64           `json:"currentAllocationPercentage"`
	TargetAllocationPercentage  float64           `json:"targetAllocationPercentage"`
	AllocationDifference        float64           `json:"allocationDifference"`
	RebalanceAmount             float64           `json:"rebalanceAmount"`
	RebalancingStatus           RebalancingStatus `json:"rebalancingStatus"`
}

// PortfolioView is the full derived portfolio returned by GET /portfolios.
type PortfolioView struct {
	Positions      []Position `json:"positions"`
	TotalValue     float64    `json:"totalValue"`
	TotalAllocated float64    `json:"totalAllocated"`
	Insights       []string   `json:"insights,omitempty"`
}

// StrategyItem is the per-ticker input row for the rebalancing recommender:
// a position's current value alongside its resolved target percentage.
type StrategyItem struct {
	Ticker            string  `json:"ticker"`
	CurrentValue      float64 `json:"currentValue"`
	CurrentPercentage float64 `json:"currentPercentage"`
	TargetPercentage  float64 `json:"targetPercentage"`
}

// Recommendation is one suggested buy produced by the recommender.
type Recommendation struct {
	Ticker    string  `json:"ticker"`
	BuyAmount float64 `json:"buyAmount"`
	Deficit   float64 `json:"deficit"`
}

// RebalanceAction describes a position's drift for the actions endpoint.
type RebalanceAction struct {
	Ticker            string            `json:"ticker"`
	Status            RebalancingStatus `json:"status"`
	CurrentPercentage float64           `json:"currentPercentage"`
	TargetPercentage  float64           `json:"targetPercentage"`
	DriftPercentage   float64           `json:"driftPercentage"`
	Amount            float64           `json:"amount"` // value to move toward target, positive = buy
}
