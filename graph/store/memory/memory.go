package memory

import (
	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring InMemoryGraph implements graph.Graph.
var _ graph.Graph = (*InMemoryGraph)(nil)

// vertex holds the adjacency information for a single graph vertex.
type vertex struct {
	outDegree    int
	predecessors []graph.VertexID
}

// InMemoryGraph implements a graph that keeps a map of per-vertex adjacency
// lists. It is meant for small to medium graphs that are assembled one edge
// at a time.
//
// InMemoryGraph is not safe for concurrent mutation; all edges must be added
// before the graph is handed to a ranking engine.
type InMemoryGraph struct {
	vertices  map[graph.VertexID]*vertex
	edgeCount int
}

// NewInMemoryGraph creates a new graph with vertices in the [0, numVertices)
// range and no edges.
func NewInMemoryGraph(numVertices int) *InMemoryGraph {
	g := &InMemoryGraph{
		vertices: make(map[graph.VertexID]*vertex, numVertices),
	}
	for v := 0; v < numVertices; v++ {
		g.vertices[graph.VertexID(v)] = new(vertex)
	}
	return g
}

// FromEdgeList creates a new graph populated with the contents of el.
func FromEdgeList(el *graph.EdgeList) (*InMemoryGraph, error) {
	g := NewInMemoryGraph(el.NumVertices)
	it := el.Iterator()
	for it.Next() {
		e := it.Edge()
		if err := g.AddEdge(e.Src, e.Dst); err != nil {
			_ = it.Close()
			return nil, err
		}
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, err
	}
	return g, it.Close()
}

// AddEdge inserts a directed edge from src to dst. Both endpoints must
// already exist in the graph.
func (g *InMemoryGraph) AddEdge(src, dst graph.VertexID) error {
	srcVert, dstVert := g.vertices[src], g.vertices[dst]
	if srcVert == nil || dstVert == nil {
		return xerrors.Errorf("add edge %d -> %d: %w", src, dst, graph.ErrUnknownEdgeLinks)
	}

	srcVert.outDegree++
	dstVert.predecessors = append(dstVert.predecessors, src)
	g.edgeCount++
	return nil
}

// VertexCount implements graph.View.
func (g *InMemoryGraph) VertexCount() int { return len(g.vertices) }

// EdgeCount implements graph.Graph.
func (g *InMemoryGraph) EdgeCount() int { return g.edgeCount }

// OutDegree implements graph.View.
func (g *InMemoryGraph) OutDegree(v graph.VertexID) int {
	return g.vertices[v].outDegree
}

// Predecessors implements graph.View.
func (g *InMemoryGraph) Predecessors(v graph.VertexID) []graph.VertexID {
	return g.vertices[v].predecessors
}
