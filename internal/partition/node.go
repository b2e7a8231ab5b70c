package partition

// Kind classifies a node by why it stopped (or did not stop) subdividing.
type Kind uint8

const (
	// KindLeaf holds at most one object.
	KindLeaf Kind = iota
	// KindBranch has 2^D children.
	KindBranch
	// KindCoincident holds two or more objects at the exact same position.
	KindCoincident
	// KindCapped reached the depth limit while still holding two or more
	// distinct objects.
	KindCapped
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBranch:
		return "branch"
	case KindCoincident:
		return "coincident"
	case KindCapped:
		return "capped"
	default:
		return "unknown"
	}
}

// Node is one region of a Tree. Nodes are never modified after the tree is
// built; accessors return copies of internal slices.
type Node struct {
	region    Region
	depth     int
	kind      Kind
	indices   []int
	centroid  []float64
	maxRadius float64
	children  []*Node
}

func (n *Node) Region() Region     { return n.region.clone() }
func (n *Node) Width() float64     { return n.region.Width }
func (n *Node) Depth() int         { return n.depth }
func (n *Node) Kind() Kind         { return n.kind }
func (n *Node) Len() int           { return len(n.indices) }
func (n *Node) IsLeaf() bool       { return len(n.children) == 0 }
func (n *Node) NumChildren() int   { return len(n.children) }
func (n *Node) MaxRadius() float64 { return n.maxRadius }

func (n *Node) Center() []float64 {
	return append([]float64(nil), n.region.Center...)
}

// Bounds returns the lower (inclusive) and upper (exclusive) corners.
func (n *Node) Bounds() (lo, hi []float64) {
	return n.region.Bounds()
}

// Contains applies the half-open containment rule of the node's region.
func (n *Node) Contains(p []float64) bool {
	return n.region.Contains(p)
}

// Indices returns the object indices held by the node, in input order.
func (n *Node) Indices() []int {
	return append([]int(nil), n.indices...)
}

// Centroid is the mean position of the node's objects, nil when empty.
func (n *Node) Centroid() []float64 {
	if n.centroid == nil {
		return nil
	}
	return append([]float64(nil), n.centroid...)
}

func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Child returns the i-th child in subdivision order.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Walk visits n and its descendants depth-first using a LIFO stack: a node
// is visited, then its children are pushed in stored order, so the last
// child is visited first. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			return
		}
		stack = append(stack, cur.children...)
	}
}
