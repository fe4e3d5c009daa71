package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/crystalsim/internal/sim"
)

// Series is one labelled curve of an SVG plot.
type Series struct {
	Name   string
	Color  string
	Points sim.Trajectory
}

const (
	svgMargin   = 50
	svgMaxPaths = 2000
)

// TrajectoryToSVG draws the series on shared axes with the stress-strain
// title and axis labels. Long curves are thinned to at most svgMaxPaths
// vertices per series.
func TrajectoryToSVG(series []Series, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	n := 0
	for _, s := range series {
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.Strain), math.Max(maxX, p.Strain)
			minY, maxY = math.Min(minY, p.Stress), math.Max(maxY, p.Stress)
			n++
		}
	}
	if n < 2 {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	plotW := float64(width - 2*svgMargin)
	plotH := float64(height - 2*svgMargin)
	px := func(x float64) float64 { return svgMargin + (x-minX)/rangeX*plotW }
	py := func(y float64) float64 { return float64(height-svgMargin) - (y-minY)/rangeY*plotH }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%d" y="%d" fill="#e0e0e0" font-family="monospace" font-size="16" text-anchor="middle">Stress-Strain Curve</text>
`, width, height, width, height, width/2, svgMargin/2+6))

	// axes
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="#808080" stroke-width="1" d="M%d,%d L%d,%d L%d,%d"/>
`, svgMargin, svgMargin, svgMargin, height-svgMargin, width-svgMargin, height-svgMargin))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#e0e0e0" font-family="monospace" font-size="12" text-anchor="middle">Strain XX</text>
<text x="%d" y="%d" fill="#e0e0e0" font-family="monospace" font-size="12" text-anchor="middle" transform="rotate(-90 %d %d)">Stress XX</text>
`, width/2, height-svgMargin/4, svgMargin/3, height/2, svgMargin/3, height/2))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#808080" font-family="monospace" font-size="10">%.4g</text>
<text x="%d" y="%d" fill="#808080" font-family="monospace" font-size="10" text-anchor="end">%.4g</text>
`, svgMargin+2, svgMargin-4, maxY, width-svgMargin, height-svgMargin+14, maxX))

	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		stride := (len(s.Points) + svgMaxPaths - 1) / svgMaxPaths

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for j := 0; j < len(s.Points); j += stride {
			p := s.Points[j]
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(p.Strain), py(p.Stress)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(p.Strain), py(p.Stress)))
			}
		}
		if (len(s.Points)-1)%stride != 0 {
			last := s.Points[len(s.Points)-1]
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(last.Strain), py(last.Stress)))
		}
		sb.WriteString("\"/>\n")

		if s.Name != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, width-svgMargin-150, svgMargin+16*(i+1), s.Color, html.EscapeString(s.Name)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
