package graphtest

import (
	"sort"

	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// BuildFunc constructs a graph implementation from an edge list.
type BuildFunc func(el *graph.EdgeList) (graph.Graph, error)

// SuiteBase defines a re-usable set of graph-related tests that can
// be executed against any type that implements graph.Graph.
type SuiteBase struct {
	build BuildFunc
}

// SetBuilder configures the test-suite to run all tests against graphs
// produced by fn.
func (s *SuiteBase) SetBuilder(fn BuildFunc) {
	s.build = fn
}

// TestDegrees verifies that out-degrees and predecessor lists match the
// edges used to build the graph.
func (s *SuiteBase) TestDegrees(c *gc.C) {
	g := s.mustBuild(c, &graph.EdgeList{
		NumVertices: 4,
		Edges: []graph.Edge{
			{Src: 0, Dst: 1},
			{Src: 0, Dst: 2},
			{Src: 1, Dst: 2},
			{Src: 2, Dst: 0},
			{Src: 3, Dst: 2},
		},
	})

	c.Assert(g.VertexCount(), gc.Equals, 4)
	c.Assert(g.EdgeCount(), gc.Equals, 5)

	expOut := []int{2, 1, 1, 1}
	for v, exp := range expOut {
		c.Assert(g.OutDegree(graph.VertexID(v)), gc.Equals, exp, gc.Commentf("out-degree mismatch for vertex %d", v))
	}

	expPreds := [][]graph.VertexID{
		{2},
		{0},
		{0, 1, 3},
		nil,
	}
	for v, exp := range expPreds {
		c.Assert(sorted(g.Predecessors(graph.VertexID(v))), gc.DeepEquals, exp, gc.Commentf("predecessor mismatch for vertex %d", v))
	}
}

// TestParallelEdges verifies that a vertex contributing multiple edges to
// the same destination appears once per edge in the predecessor list.
func (s *SuiteBase) TestParallelEdges(c *gc.C) {
	g := s.mustBuild(c, &graph.EdgeList{
		NumVertices: 2,
		Edges: []graph.Edge{
			{Src: 0, Dst: 1},
			{Src: 0, Dst: 1},
			{Src: 1, Dst: 0},
		},
	})

	c.Assert(g.OutDegree(0), gc.Equals, 2)
	c.Assert(sorted(g.Predecessors(1)), gc.DeepEquals, []graph.VertexID{0, 0})
	c.Assert(g.EdgeCount(), gc.Equals, 3)
}

// TestSelfLoop verifies that self-loops count towards both the out-degree
// and the predecessor list of a vertex.
func (s *SuiteBase) TestSelfLoop(c *gc.C) {
	g := s.mustBuild(c, &graph.EdgeList{
		NumVertices: 1,
		Edges:       []graph.Edge{{Src: 0, Dst: 0}},
	})

	c.Assert(g.OutDegree(0), gc.Equals, 1)
	c.Assert(sorted(g.Predecessors(0)), gc.DeepEquals, []graph.VertexID{0})
}

// TestIsolatedVertices verifies that vertices without any edges are still
// part of the graph.
func (s *SuiteBase) TestIsolatedVertices(c *gc.C) {
	g := s.mustBuild(c, &graph.EdgeList{
		NumVertices: 3,
		Edges:       []graph.Edge{{Src: 0, Dst: 1}},
	})

	c.Assert(g.VertexCount(), gc.Equals, 3)
	c.Assert(g.OutDegree(2), gc.Equals, 0)
	c.Assert(g.Predecessors(2), gc.HasLen, 0)
	c.Assert(g.OutDegree(1), gc.Equals, 0)
}

// TestUnknownEdgeLinks verifies that edges referencing vertices outside the
// graph are rejected.
func (s *SuiteBase) TestUnknownEdgeLinks(c *gc.C) {
	specs := []graph.Edge{
		{Src: 0, Dst: 7},
		{Src: 7, Dst: 0},
	}

	for i, e := range specs {
		_, err := s.build(&graph.EdgeList{
			NumVertices: 2,
			Edges:       []graph.Edge{{Src: 0, Dst: 1}, e},
		})
		c.Assert(xerrors.Is(err, graph.ErrUnknownEdgeLinks), gc.Equals, true, gc.Commentf("[spec %d] expected ErrUnknownEdgeLinks; got %v", i, err))
	}
}

func (s *SuiteBase) mustBuild(c *gc.C, el *graph.EdgeList) graph.Graph {
	g, err := s.build(el)
	c.Assert(err, gc.IsNil)
	return g
}

func sorted(ids []graph.VertexID) []graph.VertexID {
	if len(ids) == 0 {
		return nil
	}
	out := append([]graph.VertexID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
