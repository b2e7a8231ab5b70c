package render

import (
	"fmt"
	"math"
	"strings"
)

var depthPalette = []string{"#00ffff", "#00ccff", "#3399ff", "#6666ff", "#9966ff", "#cc66ff", "#ff66cc"}

// SVG renders cmds as a square document of size pixels. Rect strokes are
// colored by depth; empty leaves are dimmed.
func SVG(cmds []Command, size int) string {
	ext, ok := Bounds(cmds)
	if !ok || ext.Width() <= 0 || ext.Height() <= 0 {
		return ""
	}

	scale := float64(size) / math.Max(ext.Width(), ext.Height())
	px := func(x float64) float64 { return (x - ext.MinX) * scale }
	py := func(y float64) float64 { return (ext.MaxY - y) * scale }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="none" stroke-width="1">
`, size, size, size, size))

	for _, c := range cmds {
		if c.Kind != KindRect {
			continue
		}
		stroke := depthPalette[c.Depth%len(depthPalette)]
		opacity := 1.0
		if c.Count == 0 {
			opacity = 0.35
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" stroke="%s" stroke-opacity="%.2f"/>
`, px(c.X0), py(c.Y1), (c.X1-c.X0)*scale, (c.Y1-c.Y0)*scale, stroke, opacity))
	}

	sb.WriteString("</g>\n<g fill=\"#00ff88\" fill-opacity=\"0.6\">\n")
	for _, c := range cmds {
		if c.Kind != KindCircle {
			continue
		}
		r := math.Max(c.R*scale, 1.5)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f"/>
`, px(c.X0), py(c.Y0), r))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
