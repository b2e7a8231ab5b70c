// Package partition builds n-ary spatial partition trees over point-like
// objects.
//
// A tree subdivides an axis-aligned hypercube into 2^D equal sub-regions per
// level (quadtree for D=2, octree for D=3) until every region holds at most
// one object:
//
//   - [Region]: a hypercube given by center and full side width
//   - [Node]: one region, the objects inside it and its children
//   - [Tree]: the root node plus the object set it was built from
//
// # Example
//
//	objs := partition.ObjectSet{
//	    Positions: [][]float64{{0, 0}, {5, 5}},
//	    Radii:     []float64{1, 1},
//	}
//	tree, err := partition.New(objs, partition.WithCenter([]float64{2.5, 2.5}), partition.WithWidth(10))
//	for _, n := range tree.Traverse() {
//	    fmt.Println(n.Center(), n.Width(), n.Len())
//	}
//
// # Bounds
//
// Region bounds are half-open on every axis: [center-width/2, center+width/2).
// A point lying on an internal subdivision boundary therefore belongs to
// exactly one child.
//
// # Thread Safety
//
// Trees are immutable once built. Traversal may run concurrently from any
// number of goroutines.
package partition
