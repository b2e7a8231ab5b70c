// Package dataset generates and loads object sets for partitioning.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/ntree/internal/partition"
)

var ErrUnknownKind = errors.New("dataset: unknown kind")

// Params describes a generated object set.
type Params struct {
	Kind      string  `yaml:"kind"`
	Count     int     `yaml:"count"`
	Dim       int     `yaml:"dim"`
	Seed      int64   `yaml:"seed"`
	Spread    float64 `yaml:"spread"`
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
}

func DefaultParams() Params {
	return Params{
		Kind:      "uniform",
		Count:     64,
		Dim:       2,
		Seed:      1,
		Spread:    10,
		MinRadius: 0.05,
		MaxRadius: 0.25,
	}
}

type generator func(rng *rand.Rand, p Params) [][]float64

var generators = map[string]generator{
	"uniform":    uniform,
	"cluster":    cluster,
	"ring":       ring,
	"grid":       grid,
	"coincident": coincident,
}

// Kinds lists the generator names in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(generators))
	for k := range generators {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func (p Params) Validate() error {
	if _, ok := generators[p.Kind]; !ok {
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownKind, p.Kind, Kinds())
	}
	if p.Count < 0 {
		return fmt.Errorf("dataset: count must be non-negative, got %d", p.Count)
	}
	if p.Dim < 1 || p.Dim > partition.MaxDimension {
		return fmt.Errorf("dataset: dim must be in [1, %d], got %d", partition.MaxDimension, p.Dim)
	}
	if p.Spread <= 0 {
		return fmt.Errorf("dataset: spread must be positive, got %v", p.Spread)
	}
	if p.MinRadius < 0 || p.MaxRadius < p.MinRadius {
		return fmt.Errorf("dataset: invalid radius range [%v, %v]", p.MinRadius, p.MaxRadius)
	}
	return nil
}

// Generate draws a deterministic object set for p. The same params always
// produce the same positions and radii.
func Generate(p Params) (partition.ObjectSet, error) {
	if err := p.Validate(); err != nil {
		return partition.ObjectSet{}, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	positions := generators[p.Kind](rng, p)
	radii := make([]float64, len(positions))
	for i := range radii {
		radii[i] = p.MinRadius + rng.Float64()*(p.MaxRadius-p.MinRadius)
	}
	return partition.ObjectSet{Positions: positions, Radii: radii}, nil
}

func uniform(rng *rand.Rand, p Params) [][]float64 {
	out := make([][]float64, p.Count)
	for i := range out {
		out[i] = make([]float64, p.Dim)
		for a := range out[i] {
			out[i][a] = (rng.Float64()*2 - 1) * p.Spread
		}
	}
	return out
}

// cluster scatters points normally around one center per 20 objects.
func cluster(rng *rand.Rand, p Params) [][]float64 {
	k := p.Count / 20
	if k < 1 {
		k = 1
	}
	centers := uniform(rng, Params{Count: k, Dim: p.Dim, Spread: p.Spread * 0.7})
	sigma := p.Spread / 10

	out := make([][]float64, p.Count)
	for i := range out {
		c := centers[rng.Intn(k)]
		out[i] = make([]float64, p.Dim)
		for a := range out[i] {
			out[i][a] = clamp(c[a]+rng.NormFloat64()*sigma, p.Spread)
		}
	}
	return out
}

// ring places points on a circle in the first two axes with a little jitter
// on every axis.
func ring(rng *rand.Rand, p Params) [][]float64 {
	radius := p.Spread * 0.8
	jitter := p.Spread * 0.02

	out := make([][]float64, p.Count)
	for i := range out {
		out[i] = make([]float64, p.Dim)
		angle := 2 * math.Pi * float64(i) / math.Max(1, float64(p.Count))
		for a := range out[i] {
			v := rng.NormFloat64() * jitter
			switch a {
			case 0:
				v += radius * math.Cos(angle)
			case 1:
				v += radius * math.Sin(angle)
			}
			out[i][a] = clamp(v, p.Spread)
		}
	}
	return out
}

// grid fills a regular lattice row by row; trailing lattice sites stay empty
// when Count is not a perfect power of Dim.
func grid(_ *rand.Rand, p Params) [][]float64 {
	side := int(math.Ceil(math.Pow(float64(p.Count), 1/float64(p.Dim))))
	if side < 1 {
		side = 1
	}
	step := 2 * p.Spread / float64(side)

	out := make([][]float64, p.Count)
	for i := range out {
		out[i] = make([]float64, p.Dim)
		idx := i
		for a := p.Dim - 1; a >= 0; a-- {
			out[i][a] = -p.Spread + step*(float64(idx%side)+0.5)
			idx /= side
		}
	}
	return out
}

// coincident emits groups of three objects sharing one position.
func coincident(rng *rand.Rand, p Params) [][]float64 {
	out := make([][]float64, 0, p.Count)
	for len(out) < p.Count {
		base := uniform(rng, Params{Count: 1, Dim: p.Dim, Spread: p.Spread})[0]
		for j := 0; j < 3 && len(out) < p.Count; j++ {
			out = append(out, append([]float64(nil), base...))
		}
	}
	return out
}

func clamp(v, spread float64) float64 {
	return math.Max(-spread, math.Min(spread, v))
}
