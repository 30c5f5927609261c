package models

// TickerMatch is one autocomplete result from the market search endpoint.
type TickerMatch struct {
	Ticker       string `json:"ticker"`
	CompanyName  string `json:"companyName"`
	Exchange     string `json:"exchange,omitempty"`
	SecurityType string `json:"securityType,omitempty"`
}
