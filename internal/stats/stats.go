// Package stats summarizes the shape of a partition tree.
package stats

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ntree/internal/partition"
)

type Summary struct {
	Objects       int            `json:"objects"`
	Dim           int            `json:"dim"`
	Arity         int            `json:"arity"`
	Nodes         int            `json:"nodes"`
	Branches      int            `json:"branches"`
	Leaves        int            `json:"leaves"`
	EmptyLeaves   int            `json:"empty_leaves"`
	MaxDepth      int            `json:"max_depth"`
	LeafKinds     map[string]int `json:"leaf_kinds"`
	NodesPerDepth []int          `json:"nodes_per_depth"`
	// MeanOccupancy is objects per non-empty leaf.
	MeanOccupancy float64 `json:"mean_occupancy"`
	RootWidth     float64 `json:"root_width"`
	MinLeafWidth  float64 `json:"min_leaf_width"`
}

// Summarize walks the tree once.
func Summarize(t *partition.Tree) Summary {
	s := Summary{
		Objects:       t.Count(),
		Dim:           t.Dim(),
		Arity:         t.Arity(),
		MaxDepth:      t.Depth(),
		LeafKinds:     make(map[string]int),
		NodesPerDepth: make([]int, t.Depth()+1),
		RootWidth:     t.Root().Width(),
		MinLeafWidth:  t.Root().Width(),
	}

	held := 0
	t.Walk(func(n *partition.Node) bool {
		s.Nodes++
		s.NodesPerDepth[n.Depth()]++
		if !n.IsLeaf() {
			s.Branches++
			return true
		}
		s.Leaves++
		s.LeafKinds[n.Kind().String()]++
		if n.Len() == 0 {
			s.EmptyLeaves++
		} else {
			held += n.Len()
		}
		if n.Width() < s.MinLeafWidth {
			s.MinLeafWidth = n.Width()
		}
		return true
	})

	if occupied := s.Leaves - s.EmptyLeaves; occupied > 0 {
		s.MeanOccupancy = float64(held) / float64(occupied)
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "objects:     %d (dim %d, %d children per branch)\n", s.Objects, s.Dim, s.Arity)
	fmt.Fprintf(&b, "nodes:       %d (%d branches, %d leaves, %d empty)\n", s.Nodes, s.Branches, s.Leaves, s.EmptyLeaves)
	fmt.Fprintf(&b, "depth:       %d\n", s.MaxDepth)
	fmt.Fprintf(&b, "widths:      root %.6g, smallest leaf %.6g\n", s.RootWidth, s.MinLeafWidth)
	fmt.Fprintf(&b, "occupancy:   %.3f objects per occupied leaf\n", s.MeanOccupancy)
	for _, kind := range []partition.Kind{partition.KindLeaf, partition.KindCoincident, partition.KindCapped} {
		if n := s.LeafKinds[kind.String()]; n > 0 {
			fmt.Fprintf(&b, "  %-11s %d\n", kind.String()+":", n)
		}
	}
	return b.String()
}

// DepthPlot charts nodes per depth. Trees with a single level have nothing
// to plot and return an empty string.
func DepthPlot(s Summary, width, height int) string {
	if len(s.NodesPerDepth) < 2 {
		return ""
	}
	data := make([]float64, len(s.NodesPerDepth))
	for i, n := range s.NodesPerDepth {
		data[i] = float64(n)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("nodes per depth"),
	)
}
