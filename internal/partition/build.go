package partition

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

type builder struct {
	positions     [][]float64
	radii         []float64
	dim           int
	maxDepth      int
	parallelDepth int
}

func (b *builder) build(ctx context.Context, region Region, subset []int, depth int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := &Node{region: region, depth: depth, indices: subset}
	n.centroid, n.maxRadius = b.aggregate(subset)

	switch {
	case len(subset) <= 1:
		n.kind = KindLeaf
		return n, nil
	case b.coincident(subset):
		n.kind = KindCoincident
		return n, nil
	case depth >= b.maxDepth:
		n.kind = KindCapped
		return n, nil
	}

	regions := region.Subdivide()
	subsets := b.split(region, subset)

	n.kind = KindBranch
	n.children = make([]*Node, len(regions))

	if depth < b.parallelDepth {
		g, gctx := errgroup.WithContext(ctx)
		for k := range regions {
			k := k
			g.Go(func() error {
				child, err := b.build(gctx, regions[k], subsets[k], depth+1)
				if err != nil {
					return err
				}
				n.children[k] = child
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return n, nil
	}

	for k := range regions {
		child, err := b.build(ctx, regions[k], subsets[k], depth+1)
		if err != nil {
			return nil, err
		}
		n.children[k] = child
	}
	return n, nil
}

// split hands each object of the parent subset to the one child that owns
// it, keeping input order within every child.
func (b *builder) split(region Region, subset []int) [][]int {
	subsets := make([][]int, 1<<b.dim)
	for _, i := range subset {
		k := region.Child(b.positions[i])
		subsets[k] = append(subsets[k], i)
	}
	return subsets
}

func (b *builder) coincident(subset []int) bool {
	first := b.positions[subset[0]]
	for _, i := range subset[1:] {
		p := b.positions[i]
		for a := range first {
			if p[a] != first[a] {
				return false
			}
		}
	}
	return true
}

func (b *builder) aggregate(subset []int) ([]float64, float64) {
	if len(subset) == 0 {
		return nil, 0
	}
	centroid := make([]float64, b.dim)
	maxRadius := 0.0
	for _, i := range subset {
		for a, v := range b.positions[i] {
			centroid[a] += v
		}
		maxRadius = math.Max(maxRadius, b.radii[i])
	}
	for a := range centroid {
		centroid[a] /= float64(len(subset))
	}
	return centroid, maxRadius
}
