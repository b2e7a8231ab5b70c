package render

import (
	"fmt"

	"github.com/san-kum/ntree/internal/partition"
)

type CommandKind uint8

const (
	KindRect CommandKind = iota
	KindCircle
)

// Command is one primitive in world coordinates. Rects use X0..X1 and
// Y0..Y1; circles use X0, Y0 as the center and R as the radius.
type Command struct {
	Kind   CommandKind
	X0, Y0 float64
	X1, Y1 float64
	R      float64
	Depth  int
	Count  int
}

type Options struct {
	AxisX, AxisY int
	Radii        bool
}

func DefaultOptions() Options {
	return Options{AxisX: 0, AxisY: 1, Radii: true}
}

// Extent is an axis-aligned world rectangle.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

func (e Extent) Width() float64  { return e.MaxX - e.MinX }
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// Commands emits node rects in traversal order, followed by object circles
// in input order. One-dimensional trees are drawn as a band around y=0.
func Commands(t *partition.Tree, opts Options) ([]Command, error) {
	return SubtreeCommands(t, t.Root(), opts)
}

// SubtreeCommands draws only root and its descendants, with the objects root
// holds.
func SubtreeCommands(t *partition.Tree, root *partition.Node, opts Options) ([]Command, error) {
	dim := t.Dim()
	if dim == 0 {
		return nil, nil
	}
	if opts.AxisX < 0 || opts.AxisX >= dim {
		return nil, fmt.Errorf("render: x axis %d out of range for dimension %d", opts.AxisX, dim)
	}
	if dim > 1 && (opts.AxisY < 0 || opts.AxisY >= dim || opts.AxisY == opts.AxisX) {
		return nil, fmt.Errorf("render: y axis %d invalid for dimension %d", opts.AxisY, dim)
	}

	var cmds []Command
	root.Walk(func(n *partition.Node) bool {
		lo, hi := n.Bounds()
		c := Command{
			Kind:  KindRect,
			X0:    lo[opts.AxisX],
			X1:    hi[opts.AxisX],
			Depth: n.Depth(),
			Count: n.Len(),
		}
		if dim > 1 {
			c.Y0, c.Y1 = lo[opts.AxisY], hi[opts.AxisY]
		} else {
			c.Y0, c.Y1 = -n.Width()/2, n.Width()/2
		}
		cmds = append(cmds, c)
		return true
	})

	for _, i := range root.Indices() {
		p := t.Position(i)
		c := Command{Kind: KindCircle, X0: p[opts.AxisX], Count: 1}
		if dim > 1 {
			c.Y0 = p[opts.AxisY]
		}
		if opts.Radii {
			c.R = t.Radius(i)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// Bounds returns the extent of the first rect, which is the drawn root.
func Bounds(cmds []Command) (Extent, bool) {
	for _, c := range cmds {
		if c.Kind == KindRect {
			return Extent{MinX: c.X0, MinY: c.Y0, MaxX: c.X1, MaxY: c.Y1}, true
		}
	}
	return Extent{}, false
}
