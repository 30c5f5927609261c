package models

// RiskLabel classifies the total diversification score.
type RiskLabel string

const (
	RiskHealthy  RiskLabel = "HEALTHY"
	RiskModerate RiskLabel = "MODERATE"
	RiskCritical RiskLabel = "CRITICAL"
)

// DiversificationScore is the fixed-rubric diversification assessment.
// Breakpoints and point values are part of the behavioral contract and are
// not a statistical risk model.
type DiversificationScore struct {
	AssetCountScore    float64   `json:"assetCountScore"`    // 0 / 1.5 / 3
	ConcentrationScore float64   `json:"concentrationScore"` // 0 / 2 / 4
	AssetClassScore    float64   `json:"assetClassScore"`    // 1 / 2 / 3
	Total              float64   `json:"total"`              // max 10
	Label              RiskLabel `json:"label"`
}

// ConcentrationDetail augments the score for the risk endpoint.
type ConcentrationDetail struct {
	TopTicker    string  `json:"topTicker,omitempty"`
	TopWeightPct float64 `json:"topWeightPct"`
	HHI          float64 `json:"hhi"` // Herfindahl-Hirschman index over position weights (0..1)
	HoldingCount int     `json:"holdingCount"`
	AssetClasses int     `json:"assetClasses"`
}

// RiskReport is the full response for GET /portfolios/risk.
type RiskReport struct {
	Score         DiversificationScore `json:"score"`
	Concentration ConcentrationDetail  `json:"concentration"`
}
