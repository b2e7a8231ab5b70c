package render

import "math"

// Rasterize draws cmds onto a w x h character canvas, scaling the root extent
// uniformly to fit with y pointing up.
func Rasterize(cmds []Command, w, h int) *Canvas {
	c := NewCanvas(w, h)
	ext, ok := Bounds(cmds)
	if !ok || ext.Width() <= 0 || ext.Height() <= 0 {
		return c
	}

	pw, ph := float64(w*2-1), float64(h*4-1)
	scale := math.Min(pw/ext.Width(), ph/ext.Height())
	px := func(x float64) int { return int(math.Round((x - ext.MinX) * scale)) }
	py := func(y float64) int { return int(math.Round((ext.MaxY - y) * scale)) }

	for _, cmd := range cmds {
		switch cmd.Kind {
		case KindRect:
			c.DrawRect(px(cmd.X0), py(cmd.Y1), px(cmd.X1), py(cmd.Y0))
		case KindCircle:
			c.DrawCircle(px(cmd.X0), py(cmd.Y0), cmd.R*scale)
		}
	}
	return c
}
