package partition_test

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ntree/internal/partition"
)

// dyadicObjects draws coordinates on a 1/1024 grid in [-8, 8) so that every
// subdivision of a power-of-two region is exact.
func dyadicObjects(seed int64, n, dim int) partition.ObjectSet {
	rng := rand.New(rand.NewSource(seed))
	objs := partition.ObjectSet{
		Positions: make([][]float64, n),
		Radii:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		p := make([]float64, dim)
		for a := range p {
			p[a] = float64(rng.Intn(16*1024))/1024 - 8
		}
		objs.Positions[i] = p
		objs.Radii[i] = rng.Float64()
	}
	return objs
}

// offGridObjects places objects in a random region whose center and width
// are not powers of two: the lower corner, points on the faces shared by the
// first-level children, and interior points. Only positions the region
// contains are kept.
func offGridObjects(rng *rand.Rand, dim, n int) (partition.ObjectSet, partition.Region) {
	r := partition.Region{Center: make([]float64, dim), Width: 0.1 + rng.Float64()*5}
	for a := range r.Center {
		r.Center[a] = rng.Float64()*20 - 10
	}
	lo, _ := r.Bounds()

	candidates := [][]float64{lo, r.Center}
	for i := 0; i < n; i++ {
		p := make([]float64, dim)
		for a := range p {
			switch rng.Intn(4) {
			case 0:
				p[a] = lo[a]
			case 1:
				p[a] = r.Center[a]
			case 2:
				p[a] = r.Center[a] - r.Width/4
			default:
				p[a] = lo[a] + rng.Float64()*r.Width
			}
		}
		candidates = append(candidates, p)
	}

	var objs partition.ObjectSet
	for _, p := range candidates {
		if r.Contains(p) {
			objs.Positions = append(objs.Positions, p)
			objs.Radii = append(objs.Radii, rng.Float64())
		}
	}
	return objs, r
}

func samePosition(t *partition.Tree, idx []int) bool {
	first := t.Position(idx[0])
	for _, i := range idx[1:] {
		p := t.Position(i)
		for a := range first {
			if p[a] != first[a] {
				return false
			}
		}
	}
	return true
}

type nodeShape struct {
	Center   []float64
	Width    float64
	Depth    int
	Kind     partition.Kind
	Indices  []int
	Children int
}

func shapes(t *partition.Tree) []nodeShape {
	var out []nodeShape
	for _, n := range t.Traverse() {
		out = append(out, nodeShape{
			Center:   n.Center(),
			Width:    n.Width(),
			Depth:    n.Depth(),
			Kind:     n.Kind(),
			Indices:  n.Indices(),
			Children: n.NumChildren(),
		})
	}
	return out
}

var _ = Describe("Tree", func() {
	region := []partition.Option{
		partition.WithCenter([]float64{0, 0}),
		partition.WithWidth(16),
	}

	Describe("scenario A: two points in a 10-wide square", func() {
		var tree *partition.Tree

		BeforeEach(func() {
			var err error
			tree, err = partition.New(partition.ObjectSet{
				Positions: [][]float64{{0, 0}, {5, 5}},
				Radii:     []float64{1, 1},
			}, partition.WithCenter([]float64{2.5, 2.5}), partition.WithWidth(10))
			Expect(err).NotTo(HaveOccurred())
		})

		It("splits the root into four quadrants", func() {
			root := tree.Root()
			Expect(root.Kind()).To(Equal(partition.KindBranch))
			Expect(root.NumChildren()).To(Equal(4))
			Expect(tree.Arity()).To(Equal(4))
			Expect(tree.Len()).To(Equal(5))
			Expect(tree.Depth()).To(Equal(1))
		})

		It("places each point in the diagonal quadrant nearest to it", func() {
			root := tree.Root()
			Expect(root.Child(0).Center()).To(Equal([]float64{5, 5}))
			Expect(root.Child(0).Indices()).To(Equal([]int{1}))
			Expect(root.Child(3).Center()).To(Equal([]float64{0, 0}))
			Expect(root.Child(3).Indices()).To(Equal([]int{0}))

			for _, k := range []int{1, 2} {
				Expect(root.Child(k).Len()).To(BeZero())
				Expect(root.Child(k).IsLeaf()).To(BeTrue())
			}
		})

		It("traverses root first, then the last child first", func() {
			root := tree.Root()
			Expect(tree.Traverse()).To(Equal([]*partition.Node{
				root, root.Child(3), root.Child(2), root.Child(1), root.Child(0),
			}))
		})

		It("records group geometry on every node", func() {
			Expect(tree.Root().Centroid()).To(Equal([]float64{2.5, 2.5}))
			Expect(tree.Root().MaxRadius()).To(Equal(1.0))
			Expect(tree.Root().Child(1).Centroid()).To(BeNil())
		})
	})

	Describe("scenario B: a single object", func() {
		It("yields a terminal root regardless of width", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{1, 2, 3}},
				Radii:     []float64{0.5},
			}, partition.WithWidth(1e6))
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Root().IsLeaf()).To(BeTrue())
			Expect(tree.Root().Kind()).To(Equal(partition.KindLeaf))
			Expect(tree.Traverse()).To(HaveLen(1))
			Expect(tree.Arity()).To(Equal(8))
		})
	})

	Describe("scenario C: no objects", func() {
		It("yields a terminal root with zero objects", func() {
			tree, err := partition.New(partition.ObjectSet{})
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Count()).To(BeZero())
			Expect(tree.Root().Len()).To(BeZero())
			Expect(tree.Traverse()).To(HaveLen(1))
		})

		It("keeps a supplied center", func() {
			tree, err := partition.New(partition.ObjectSet{}, region...)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Dim()).To(Equal(2))
			Expect(tree.Root().Width()).To(Equal(16.0))
		})
	})

	Describe("scenario D: coincident objects", func() {
		It("groups identical positions into one terminal leaf", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{1, 1}, {1, 1}},
				Radii:     []float64{1, 2},
			})
			Expect(err).NotTo(HaveOccurred())
			root := tree.Root()
			Expect(root.IsLeaf()).To(BeTrue())
			Expect(root.Kind()).To(Equal(partition.KindCoincident))
			Expect(root.Len()).To(Equal(2))
			Expect(root.MaxRadius()).To(Equal(2.0))
		})

		It("isolates a coincident clump below a branch", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{1, 1}, {1, 1}, {-3, -3}},
				Radii:     []float64{1, 1, 1},
			}, region...)
			Expect(err).NotTo(HaveOccurred())
			var clumps []*partition.Node
			for _, n := range tree.Leaves() {
				if n.Kind() == partition.KindCoincident {
					clumps = append(clumps, n)
				}
			}
			Expect(clumps).To(HaveLen(1))
			Expect(clumps[0].Indices()).To(Equal([]int{0, 1}))
		})

		It("enforces the maximum depth for near-coincident objects", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{0.25, 0.25}, {0.25 + math.Ldexp(1, -20), 0.25}},
				Radii:     []float64{1, 1},
			}, partition.WithCenter([]float64{0, 0}), partition.WithWidth(2), partition.WithMaxDepth(8))
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Depth()).To(Equal(8))

			leaves := tree.Leaves()
			var capped []*partition.Node
			for _, n := range leaves {
				if n.Kind() == partition.KindCapped {
					capped = append(capped, n)
				}
			}
			Expect(capped).To(HaveLen(1))
			Expect(capped[0].Len()).To(Equal(2))
			Expect(capped[0].Depth()).To(Equal(8))
		})

		It("terminates with the default depth limit", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{0.25, 0.25}, {math.Nextafter(0.25, 1), 0.25}},
				Radii:     []float64{1, 1},
			}, partition.WithCenter([]float64{0, 0}), partition.WithWidth(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Depth()).To(BeNumerically("<=", partition.DefaultMaxDepth))
		})
	})

	Describe("structural properties", func() {
		var (
			objs partition.ObjectSet
			tree *partition.Tree
		)

		BeforeEach(func() {
			objs = dyadicObjects(7, 400, 2)
			var err error
			tree, err = partition.New(objs, region...)
			Expect(err).NotTo(HaveOccurred())
		})

		It("partitions every branch's objects among its children", func() {
			for _, n := range tree.Traverse() {
				if n.IsLeaf() {
					continue
				}
				Expect(n.NumChildren()).To(Equal(tree.Arity()))
				var union []int
				for _, c := range n.Children() {
					union = append(union, c.Indices()...)
				}
				sort.Ints(union)
				Expect(union).To(Equal(n.Indices()))
			}
		})

		It("subdivides every node holding more than one object", func() {
			for _, n := range tree.Traverse() {
				if n.Len() <= 1 {
					Expect(n.IsLeaf()).To(BeTrue())
					Expect(n.Kind()).To(Equal(partition.KindLeaf))
				} else if n.Kind() == partition.KindBranch {
					Expect(n.IsLeaf()).To(BeFalse())
				}
			}
		})

		It("holds exactly the objects inside each region", func() {
			for _, n := range tree.Traverse() {
				held := make(map[int]bool)
				for _, i := range n.Indices() {
					held[i] = true
				}
				for i, p := range objs.Positions {
					Expect(n.Contains(p)).To(Equal(held[i]), "object %d at node depth %d", i, n.Depth())
				}
			}
		})

		It("conserves the object count across leaves", func() {
			total := 0
			for _, n := range tree.Leaves() {
				total += n.Len()
			}
			Expect(total).To(Equal(tree.Count()))
		})

		It("halves the width at every level", func() {
			for _, n := range tree.Traverse() {
				Expect(n.Width()).To(Equal(16 / math.Pow(2, float64(n.Depth()))))
			}
		})

		It("is deterministic across builds", func() {
			again, err := partition.New(objs, region...)
			Expect(err).NotTo(HaveOccurred())
			Expect(shapes(again)).To(Equal(shapes(tree)))
		})

		It("builds the same tree in parallel", func() {
			par, err := partition.New(objs, append(region, partition.WithParallelDepth(3))...)
			Expect(err).NotTo(HaveOccurred())
			Expect(shapes(par)).To(Equal(shapes(tree)))
		})

		It("supports concurrent traversal", func() {
			want := len(tree.Traverse())
			var wg sync.WaitGroup
			counts := make([]int, 8)
			for i := range counts {
				i := i
				wg.Add(1)
				go func() {
					defer wg.Done()
					counts[i] = len(tree.Traverse())
				}()
			}
			wg.Wait()
			for _, c := range counts {
				Expect(c).To(Equal(want))
			}
		})

		It("stops walking when the visitor returns false", func() {
			seen := 0
			tree.Walk(func(*partition.Node) bool {
				seen++
				return seen < 3
			})
			Expect(seen).To(Equal(3))
		})

		It("does not share state with the caller's slices", func() {
			objs.Positions[0][0] = 1000
			Expect(tree.Position(0)[0]).NotTo(Equal(1000.0))
			idx := tree.Root().Indices()
			idx[0] = -1
			Expect(tree.Root().Indices()[0]).To(Equal(0))
		})
	})

	Describe("higher dimensions", func() {
		It("uses 2^D children per branch", func() {
			objs := dyadicObjects(3, 64, 4)
			tree, err := partition.New(objs,
				partition.WithCenter([]float64{0, 0, 0, 0}), partition.WithWidth(16))
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Arity()).To(Equal(16))
			Expect(tree.Root().NumChildren()).To(Equal(16))
		})
	})

	Describe("off-grid regions", func() {
		It("splits two points when one lies on the lower face", func() {
			c := -2.8573612741762506
			w := 1.141971567899058
			lo := c - w/2
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{lo, lo}, {c + 0.3, c + 0.3}},
				Radii:     []float64{1, 1},
			}, partition.WithCenter([]float64{c, c}), partition.WithWidth(w))
			Expect(err).NotTo(HaveOccurred())

			root := tree.Root()
			Expect(root.Kind()).To(Equal(partition.KindBranch))
			Expect(root.NumChildren()).To(Equal(4))
			Expect(root.Child(0).Indices()).To(Equal([]int{1}))
			Expect(root.Child(3).Indices()).To(Equal([]int{0}))
			Expect(root.Child(1).Len()).To(BeZero())
			Expect(root.Child(2).Len()).To(BeZero())
			Expect(tree.Len()).To(Equal(5))
		})

		It("subdivides every node holding distinct objects below the depth limit", func() {
			rng := rand.New(rand.NewSource(42))
			for trial := 0; trial < 60; trial++ {
				dim := 1 + trial%3
				objs, r := offGridObjects(rng, dim, 40)
				tree, err := partition.New(objs, partition.WithRegion(r))
				Expect(err).NotTo(HaveOccurred(), "trial %d region %+v", trial, r)

				for _, n := range tree.Traverse() {
					switch {
					case n.Len() <= 1:
						Expect(n.Kind()).To(Equal(partition.KindLeaf))
					case samePosition(tree, n.Indices()):
						Expect(n.Kind()).To(Equal(partition.KindCoincident))
					case n.Depth() < partition.DefaultMaxDepth:
						Expect(n.Kind()).To(Equal(partition.KindBranch),
							"trial %d: %d objects at depth %d", trial, n.Len(), n.Depth())
					default:
						Expect(n.Kind()).To(Equal(partition.KindCapped))
					}

					if n.Kind() != partition.KindBranch {
						continue
					}
					var union []int
					for _, ch := range n.Children() {
						union = append(union, ch.Indices()...)
					}
					sort.Ints(union)
					Expect(union).To(Equal(n.Indices()), "trial %d depth %d", trial, n.Depth())
				}
			}
		})
	})

	Describe("default bounds", func() {
		It("centers on the mean and sizes to twice the largest coordinate plus one", func() {
			tree, err := partition.New(partition.ObjectSet{
				Positions: [][]float64{{0, 0}, {4, 2}},
				Radii:     []float64{1, 1},
			})
			Expect(err).NotTo(HaveOccurred())
			r := tree.Region()
			Expect(r.Center).To(Equal([]float64{2, 1}))
			Expect(r.Width).To(Equal(9.0))
		})

		It("accepts a fitted region for negative inputs", func() {
			objs := partition.ObjectSet{
				Positions: [][]float64{{-100, -100}, {-90, -95}},
				Radii:     []float64{1, 1},
			}
			_, err := partition.New(objs)
			Expect(err).To(MatchError(partition.ErrInvalidInput))

			tree, err := partition.New(objs, partition.WithRegion(partition.FitRegion(objs.Positions)))
			Expect(err).NotTo(HaveOccurred())
			Expect(tree.Root().Kind()).To(Equal(partition.KindBranch))
		})
	})

	DescribeTable("rejects invalid input before building",
		func(objs partition.ObjectSet, field string, opts ...partition.Option) {
			tree, err := partition.New(objs, opts...)
			Expect(tree).To(BeNil())
			Expect(err).To(MatchError(partition.ErrInvalidInput))

			var inputErr *partition.InputError
			Expect(err).To(BeAssignableToTypeOf(inputErr))
			Expect(err.(*partition.InputError).Field).To(Equal(field))
		},
		Entry("mismatched radii",
			partition.ObjectSet{Positions: [][]float64{{0, 0}, {1, 1}}, Radii: []float64{1}}, "radii"),
		Entry("ragged positions",
			partition.ObjectSet{Positions: [][]float64{{0, 0}, {1}}, Radii: []float64{1, 1}}, "positions"),
		Entry("NaN coordinate",
			partition.ObjectSet{Positions: [][]float64{{0, math.NaN()}}, Radii: []float64{1}}, "positions"),
		Entry("infinite radius",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{math.Inf(1)}}, "radii"),
		Entry("negative radius",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{-1}}, "radii"),
		Entry("empty position vector",
			partition.ObjectSet{Positions: [][]float64{{}}, Radii: []float64{1}}, "positions"),
		Entry("zero width",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{1}}, "width", partition.WithWidth(0)),
		Entry("negative width",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{1}}, "width", partition.WithWidth(-4)),
		Entry("non-positive default width",
			partition.ObjectSet{Positions: [][]float64{{-5, -5}, {-6, -6}}, Radii: []float64{1, 1}}, "width"),
		Entry("center dimension mismatch",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{1}}, "center", partition.WithCenter([]float64{0, 0, 0})),
		Entry("infinite center",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{1}}, "center", partition.WithCenter([]float64{math.Inf(-1), 0})),
		Entry("position outside explicit region",
			partition.ObjectSet{Positions: [][]float64{{0, 0}, {3, 0}}, Radii: []float64{1, 1}}, "positions",
			partition.WithCenter([]float64{0, 0}), partition.WithWidth(2)),
		Entry("position on the exclusive upper face",
			partition.ObjectSet{Positions: [][]float64{{1, 0}}, Radii: []float64{1}}, "positions",
			partition.WithCenter([]float64{0, 0}), partition.WithWidth(2)),
		Entry("max depth below one",
			partition.ObjectSet{Positions: [][]float64{{0, 0}}, Radii: []float64{1}}, "max_depth", partition.WithMaxDepth(0)),
	)

	It("returns the context error when canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tree, err := partition.NewContext(ctx, dyadicObjects(1, 50, 2), region...)
		Expect(tree).To(BeNil())
		Expect(err).To(MatchError(context.Canceled))
	})

	It("logs one debug record per build", func() {
		var buf strings.Builder
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		_, err := partition.New(dyadicObjects(2, 20, 2), append(region, partition.WithLogger(logger))...)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("partition built"))
		Expect(buf.String()).To(ContainSubstring("objects=20"))
	})
})
