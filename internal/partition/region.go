package partition

import "math"

// Region is an axis-aligned hypercube. Width is the full side length.
type Region struct {
	Center []float64
	Width  float64
}

func (r Region) Dim() int { return len(r.Center) }

// Bounds returns the per-axis lower (inclusive) and upper (exclusive) limits.
func (r Region) Bounds() (lo, hi []float64) {
	half := r.Width / 2
	lo = make([]float64, len(r.Center))
	hi = make([]float64, len(r.Center))
	for a, c := range r.Center {
		lo[a] = c - half
		hi[a] = c + half
	}
	return lo, hi
}

// Contains reports whether p lies in [center-width/2, center+width/2) on
// every axis.
func (r Region) Contains(p []float64) bool {
	if len(p) != len(r.Center) {
		return false
	}
	half := r.Width / 2
	for a, c := range r.Center {
		if !(c-half <= p[a] && p[a] < c+half) {
			return false
		}
	}
	return true
}

// Mask flags, for each index in subset, whether positions[index] is
// contained in r.
func (r Region) Mask(positions [][]float64, subset []int) []bool {
	mask := make([]bool, len(subset))
	for k, i := range subset {
		mask[k] = r.Contains(positions[i])
	}
	return mask
}

// Subdivide splits r into 2^D regions of half the width. Children are
// enumerated as the Cartesian product of {+shift, -shift} per axis with the
// last axis varying fastest, so child 0 is the all-positive corner.
func (r Region) Subdivide() []Region {
	d := len(r.Center)
	width := r.Width / 2
	shift := width / 2

	out := make([]Region, 1<<d)
	for k := range out {
		center := make([]float64, d)
		for a := 0; a < d; a++ {
			if k&(1<<(d-1-a)) == 0 {
				center[a] = r.Center[a] + shift
			} else {
				center[a] = r.Center[a] - shift
			}
		}
		out[k] = Region{Center: center, Width: width}
	}
	return out
}

// Child returns the index of the child of r that owns p, for a p already
// contained in r. Each axis is decided against the parent center alone, which
// is the half-open rule of the Subdivide children without the rounding of
// their derived bounds: siblings share the face at the center exactly.
func (r Region) Child(p []float64) int {
	d := len(r.Center)
	k := 0
	for a, c := range r.Center {
		if p[a] < c {
			k |= 1 << (d - 1 - a)
		}
	}
	return k
}

func (r Region) clone() Region {
	c := make([]float64, len(r.Center))
	copy(c, r.Center)
	return Region{Center: c, Width: r.Width}
}

// FitRegion returns the smallest hypercube centered on the bounding box of
// positions, widened by one percent so the upper faces stay exclusive.
// Unlike the default bounds it covers inputs with large negative coordinates.
func FitRegion(positions [][]float64) Region {
	if len(positions) == 0 {
		return Region{Width: 1}
	}

	d := len(positions[0])
	lo := make([]float64, d)
	hi := make([]float64, d)
	copy(lo, positions[0])
	copy(hi, positions[0])
	for _, p := range positions[1:] {
		for a := 0; a < d && a < len(p); a++ {
			lo[a] = math.Min(lo[a], p[a])
			hi[a] = math.Max(hi[a], p[a])
		}
	}

	center := make([]float64, d)
	for a := range center {
		center[a] = lo[a] + (hi[a]-lo[a])/2
	}
	return FitAround(positions, center)
}

// FitAround returns the cube centered on center that encloses every position:
// twice the largest per-axis distance plus one percent, doubled until the
// upper faces clear the positions at the float resolution of center.
// Positions of another dimension, or non-finite values, are left for New to
// reject.
func FitAround(positions [][]float64, center []float64) Region {
	c := make([]float64, len(center))
	copy(c, center)

	reach := 0.0
	for _, p := range positions {
		if len(p) != len(c) {
			return Region{Center: c, Width: 1}
		}
		for a, v := range p {
			reach = math.Max(reach, math.Abs(v-c[a]))
		}
	}

	width := 2 * reach * 1.01
	if width == 0 {
		width = 1
	}
	r := Region{Center: c, Width: width}
	for !covers(r, positions) && !math.IsInf(r.Width, 0) && !math.IsNaN(r.Width) {
		r.Width *= 2
	}
	return r
}

func covers(r Region, positions [][]float64) bool {
	for _, p := range positions {
		if !r.Contains(p) {
			return false
		}
	}
	return true
}
