package partition

import (
	"context"
	"math"
	"time"
)

// ObjectSet is the input of a build: parallel sequences of positions and
// radii.
type ObjectSet struct {
	Positions [][]float64
	Radii     []float64
}

func (o ObjectSet) Len() int { return len(o.Positions) }

// Dim returns the dimension of the first position, 0 for an empty set.
func (o ObjectSet) Dim() int {
	if len(o.Positions) == 0 {
		return 0
	}
	return len(o.Positions[0])
}

func (o ObjectSet) clone() ObjectSet {
	pos := make([][]float64, len(o.Positions))
	for i, p := range o.Positions {
		pos[i] = append([]float64(nil), p...)
	}
	return ObjectSet{Positions: pos, Radii: append([]float64(nil), o.Radii...)}
}

// Tree is an immutable n-ary spatial partition over an ObjectSet.
type Tree struct {
	root    *Node
	objects ObjectSet
	dim     int
	nodes   int
	depth   int
}

// New builds a tree over objects. It is NewContext with a background
// context.
func New(objects ObjectSet, opts ...Option) (*Tree, error) {
	return NewContext(context.Background(), objects, opts...)
}

// NewContext validates objects and the resolved root region, then subdivides
// top-down until every node holds at most one object. Validation failures
// wrap ErrInvalidInput; a canceled ctx returns ctx.Err(). No partial tree is
// ever returned.
func NewContext(ctx context.Context, objects ObjectSet, opts ...Option) (*Tree, error) {
	cfg := NewConfig(opts...)
	start := time.Now()

	dim, err := validateObjects(objects)
	if err != nil {
		return nil, err
	}
	root, err := resolveRegion(objects, dim, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MaxDepth < 1 {
		return nil, invalid("max_depth", -1, "must be at least 1, got %d", cfg.MaxDepth)
	}

	objs := objects.clone()
	b := &builder{
		positions:     objs.Positions,
		radii:         objs.Radii,
		dim:           root.Dim(),
		maxDepth:      cfg.MaxDepth,
		parallelDepth: cfg.ParallelDepth,
	}

	all := make([]int, objs.Len())
	for i := range all {
		all[i] = i
	}

	node, err := b.build(ctx, root, all, 0)
	if err != nil {
		return nil, err
	}

	t := &Tree{root: node, objects: objs, dim: root.Dim()}
	node.Walk(func(n *Node) bool {
		t.nodes++
		if n.depth > t.depth {
			t.depth = n.depth
		}
		return true
	})

	cfg.Logger.Debug("partition built",
		"objects", objs.Len(),
		"dim", t.dim,
		"nodes", t.nodes,
		"depth", t.depth,
		"parallel_depth", cfg.ParallelDepth,
		"elapsed", time.Since(start),
	)
	return t, nil
}

func validateObjects(o ObjectSet) (int, error) {
	if len(o.Positions) != len(o.Radii) {
		return 0, invalid("radii", -1, "have %d radii for %d positions", len(o.Radii), len(o.Positions))
	}
	if len(o.Positions) == 0 {
		return 0, nil
	}

	dim := len(o.Positions[0])
	if dim == 0 {
		return 0, invalid("positions", 0, "position has no coordinates")
	}
	if dim > MaxDimension {
		return 0, invalid("positions", 0, "dimension %d exceeds %d", dim, MaxDimension)
	}

	for i, p := range o.Positions {
		if len(p) != dim {
			return 0, invalid("positions", i, "dimension %d, want %d", len(p), dim)
		}
		for _, v := range p {
			if !finite(v) {
				return 0, invalid("positions", i, "non-finite coordinate %v", v)
			}
		}
		r := o.Radii[i]
		if !finite(r) {
			return 0, invalid("radii", i, "non-finite radius %v", r)
		}
		if r < 0 {
			return 0, invalid("radii", i, "negative radius %v", r)
		}
	}
	return dim, nil
}

// resolveRegion applies the default center (per-axis mean) and default width
// (twice the largest coordinate plus one). The default width is not
// symmetric; inputs with large negative coordinates need an explicit width
// and are rejected rather than re-centered.
func resolveRegion(o ObjectSet, dim int, cfg *Config) (Region, error) {
	center := cfg.Center
	if center == nil {
		center = meanPosition(o.Positions, dim)
	}
	if o.Len() > 0 && len(center) != dim {
		return Region{}, invalid("center", -1, "dimension %d, want %d", len(center), dim)
	}
	if len(center) > MaxDimension {
		return Region{}, invalid("center", -1, "dimension %d exceeds %d", len(center), MaxDimension)
	}
	for _, v := range center {
		if !finite(v) {
			return Region{}, invalid("center", -1, "non-finite coordinate %v", v)
		}
	}

	width := cfg.Width
	if cfg.widthSet {
		if !finite(width) || width <= 0 {
			return Region{}, invalid("width", -1, "must be positive and finite, got %v", width)
		}
	} else {
		width = defaultWidth(o.Positions)
		if !finite(width) || width <= 0 {
			return Region{}, invalid("width", -1, "default width %v is not positive; supply an explicit width", width)
		}
	}

	r := Region{Center: append([]float64(nil), center...), Width: width}
	for i, p := range o.Positions {
		if !r.Contains(p) {
			return Region{}, invalid("positions", i, "outside root region (center %v, width %v)", r.Center, r.Width)
		}
	}
	return r, nil
}

func meanPosition(positions [][]float64, dim int) []float64 {
	mean := make([]float64, dim)
	if len(positions) == 0 {
		return mean
	}
	for _, p := range positions {
		for a := range mean {
			mean[a] += p[a]
		}
	}
	for a := range mean {
		mean[a] /= float64(len(positions))
	}
	return mean
}

func defaultWidth(positions [][]float64) float64 {
	if len(positions) == 0 {
		return 1
	}
	maxCoord := math.Inf(-1)
	for _, p := range positions {
		for _, v := range p {
			maxCoord = math.Max(maxCoord, v)
		}
	}
	return 2*maxCoord + 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Root returns the root node. It is never nil.
func (t *Tree) Root() *Node { return t.root }

// Region returns the root region.
func (t *Tree) Region() Region { return t.root.Region() }

func (t *Tree) Dim() int { return t.dim }

// Arity is the number of children of every branch node, 2^Dim.
func (t *Tree) Arity() int { return 1 << t.dim }

// Count is the number of objects the tree was built from.
func (t *Tree) Count() int { return t.objects.Len() }

// Len is the number of nodes, including the root.
func (t *Tree) Len() int { return t.nodes }

// Depth is the depth of the deepest node; a terminal root has depth 0.
func (t *Tree) Depth() int { return t.depth }

func (t *Tree) Position(i int) []float64 {
	return append([]float64(nil), t.objects.Positions[i]...)
}

func (t *Tree) Radius(i int) float64 { return t.objects.Radii[i] }

// Objects returns a copy of the object set the tree was built from.
func (t *Tree) Objects() ObjectSet { return t.objects.clone() }
