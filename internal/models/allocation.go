package models

import "time"

// AllocationTarget is a user-specified desired percentage of portfolio value
// for one ticker. Unique per ticker. The sum across tickers is advisory:
// under 100% reserves cash, over 100% is flagged but not rejected.
type AllocationTarget struct {
	Ticker           string    `json:"ticker"`
	TargetPercentage float64   `json:"targetPercentage"`
	UpdatedAt        time.Time `json:"-"`
}

// AllocationSet is the wire shape for GET/PUT /portfolios/allocation.
// The PUT payload is the complete desired state: every ticker, not just
// changed ones. Omitted tickers are deleted server-side.
type AllocationSet struct {
	Allocations    []AllocationTarget `json:"allocations"`
	TotalAllocated float64            `json:"totalAllocated"`
	OverAllocated  bool               `json:"overAllocated,omitempty"`
}
