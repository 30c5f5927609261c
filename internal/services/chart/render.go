package chart

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jcarver/folio/internal/models"
)

// RenderPNG renders segments as a donut chart. Returns raw PNG bytes.
func RenderPNG(segments []models.ChartSegment, title string) ([]byte, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to render")
	}

	values := make([]chart.Value, len(segments))
	for i, seg := range segments {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", seg.Label, seg.Percentage),
			Value: seg.Value,
			Style: chart.Style{
				FillColor: drawing.ColorFromHex(strings.TrimPrefix(seg.Color, "#")),
			},
		}
	}

	graph := chart.DonutChart{
		Title:  title,
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
