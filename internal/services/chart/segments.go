// Package chart builds color-tagged allocation segments and renders them to
// PNG.
package chart

import (
	"hash/fnv"
	"sort"

	"github.com/jcarver/folio/internal/models"
)

// Palette is the fixed 8-color cycle segments draw from. Colors are assigned
// by hashing the segment key, so a given ticker keeps its color across
// requests and across portfolios.
var Palette = []string{
	"#2563eb", // blue
	"#16a34a", // green
	"#ea580c", // orange
	"#9333ea", // purple
	"#dc2626", // red
	"#0891b2", // cyan
	"#ca8a04", // amber
	"#db2777", // pink
}

// colorFor maps a segment key onto the palette by FNV-1a hash.
func colorFor(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// BuildSegments turns positions into chart segments, one per ticker or one
// per security type depending on mode. Segments are ordered by value
// descending. After hashing, adjacent segments that collided on the same
// color are reassigned so no two neighbors match.
func BuildSegments(positions []models.Position, mode models.ChartMode) []models.ChartSegment {
	var total float64
	for i := range positions {
		total += positions[i].TotalCost
	}
	if total <= 0 {
		return []models.ChartSegment{}
	}

	var segments []models.ChartSegment
	if mode == models.ChartModeTypes {
		byType := make(map[string]float64)
		var order []string
		for i := range positions {
			st := models.NormalizeSecurityType(positions[i].SecurityType)
			if _, seen := byType[st]; !seen {
				order = append(order, st)
			}
			byType[st] += positions[i].TotalCost
		}
		for _, st := range order {
			segments = append(segments, models.ChartSegment{
				Key:   st,
				Label: st,
				Value: byType[st],
			})
		}
	} else {
		for i := range positions {
			label := positions[i].CompanyName
			if label == "" {
				label = positions[i].Ticker
			}
			segments = append(segments, models.ChartSegment{
				Key:   positions[i].Ticker,
				Label: label,
				Value: positions[i].TotalCost,
			})
		}
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Value > segments[j].Value
	})

	for i := range segments {
		segments[i].Percentage = 100 * segments[i].Value / total
		segments[i].Color = colorFor(segments[i].Key)
	}
	fixAdjacentColors(segments)
	return segments
}

// fixAdjacentColors walks the ordered segments and replaces any color equal
// to its predecessor's with the next palette entry that also differs from the
// successor's. Hash-assigned colors stay put unless they collide.
func fixAdjacentColors(segments []models.ChartSegment) {
	if len(Palette) < 3 {
		return
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].Color != segments[i-1].Color {
			continue
		}
		next := ""
		if i+1 < len(segments) {
			next = segments[i+1].Color
		}
		for _, candidate := range Palette {
			if candidate != segments[i-1].Color && candidate != next {
				segments[i].Color = candidate
				break
			}
		}
	}
}
