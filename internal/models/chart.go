package models

// ChartMode selects what the chart segments represent.
type ChartMode string

const (
	ChartModeAssets ChartMode = "assets" // one segment per ticker
	ChartModeTypes  ChartMode = "types"  // one segment per security type
)

// ChartSegment is a color-tagged slice of a bar/donut visualization.
type ChartSegment struct {
	Key        string  `json:"key"`   // ticker or security type
	Label      string  `json:"label"` // display name
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"` // hex string, e.g. "#2563eb"
}
