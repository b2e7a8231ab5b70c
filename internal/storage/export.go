package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ntree/internal/partition"
)

// ExportNode is the nested JSON form of a node.
type ExportNode struct {
	Center    []float64     `json:"center"`
	Width     float64       `json:"width"`
	Depth     int           `json:"depth"`
	Kind      string        `json:"kind"`
	Objects   []int         `json:"objects"`
	Centroid  []float64     `json:"centroid,omitempty"`
	MaxRadius float64       `json:"max_radius"`
	Children  []*ExportNode `json:"children,omitempty"`
}

type ExportData struct {
	Dim       int         `json:"dim"`
	Arity     int         `json:"arity"`
	Positions [][]float64 `json:"positions"`
	Radii     []float64   `json:"radii"`
	Root      *ExportNode `json:"root"`
}

func Export(tree *partition.Tree) ExportData {
	objs := tree.Objects()
	return ExportData{
		Dim:       tree.Dim(),
		Arity:     tree.Arity(),
		Positions: objs.Positions,
		Radii:     objs.Radii,
		Root:      exportNode(tree.Root()),
	}
}

func exportNode(n *partition.Node) *ExportNode {
	e := &ExportNode{
		Center:    n.Center(),
		Width:     n.Width(),
		Depth:     n.Depth(),
		Kind:      n.Kind().String(),
		Objects:   n.Indices(),
		Centroid:  n.Centroid(),
		MaxRadius: n.MaxRadius(),
	}
	if e.Objects == nil {
		e.Objects = []int{}
	}
	for _, c := range n.Children() {
		e.Children = append(e.Children, exportNode(c))
	}
	return e
}

func ExportJSON(w io.Writer, tree *partition.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Export(tree))
}
