package csr

import (
	"math"

	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring Graph implements graph.Graph.
var _ graph.Graph = (*Graph)(nil)

// maxEdges is the largest edge count that the uint32 offsets can address.
var maxEdges uint64 = math.MaxUint32

// Graph stores a directed graph as compact index arrays. The outgoing and
// incoming edges of vertex v live in outEdges[outStarts[v]:outStarts[v+1]]
// and inEdges[inStarts[v]:inStarts[v+1]] respectively.
type Graph struct {
	outStarts []uint32
	outEdges  []graph.VertexID
	inStarts  []uint32
	inEdges   []graph.VertexID
}

// Build consumes the edges produced by it and returns a CSR graph with
// numVertices vertices. The iterator is always closed.
func Build(numVertices int, it graph.EdgeIterator) (*Graph, error) {
	if numVertices < 0 {
		_ = it.Close()
		return nil, xerrors.Errorf("csr: invalid vertex count %d", numVertices)
	}

	var edges []graph.Edge
	for it.Next() {
		e := it.Edge()
		if int(e.Src) >= numVertices || int(e.Dst) >= numVertices {
			_ = it.Close()
			return nil, xerrors.Errorf("csr: edge %d -> %d: %w", e.Src, e.Dst, graph.ErrUnknownEdgeLinks)
		}
		if uint64(len(edges)) == maxEdges {
			_ = it.Close()
			return nil, xerrors.Errorf("csr: edge count exceeds the limit of %d edges", maxEdges)
		}
		edges = append(edges, e)
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, xerrors.Errorf("csr: %w", err)
	}
	if err := it.Close(); err != nil {
		return nil, xerrors.Errorf("csr: %w", err)
	}

	outStarts := make([]uint32, numVertices+1)
	for _, e := range edges {
		outStarts[e.Src+1]++
	}
	prefixSum(outStarts)

	outEdges := make([]graph.VertexID, len(edges))
	cursor := append([]uint32(nil), outStarts[:numVertices]...)
	for _, e := range edges {
		outEdges[cursor[e.Src]] = e.Dst
		cursor[e.Src]++
	}

	g := &Graph{outStarts: outStarts, outEdges: outEdges}
	g.buildIncoming()
	return g, nil
}

// FromOutgoing reconstructs a CSR graph from its outgoing adjacency arrays.
// The slices are retained by the returned graph.
func FromOutgoing(numVertices int, outStarts []uint32, outEdges []graph.VertexID) (*Graph, error) {
	if len(outStarts) != numVertices+1 {
		return nil, xerrors.Errorf("csr: expected %d offsets; got %d", numVertices+1, len(outStarts))
	}
	if outStarts[0] != 0 || int(outStarts[numVertices]) != len(outEdges) {
		return nil, xerrors.Errorf("csr: offsets do not span the edge array")
	}
	for v := 0; v < numVertices; v++ {
		if outStarts[v] > outStarts[v+1] {
			return nil, xerrors.Errorf("csr: offsets for vertex %d are not monotonic", v)
		}
	}
	for _, dst := range outEdges {
		if int(dst) >= numVertices {
			return nil, xerrors.Errorf("csr: edge destination %d: %w", dst, graph.ErrUnknownEdgeLinks)
		}
	}

	g := &Graph{outStarts: outStarts, outEdges: outEdges}
	g.buildIncoming()
	return g, nil
}

// buildIncoming derives the incoming adjacency arrays from the outgoing ones.
func (g *Graph) buildIncoming() {
	numVertices := len(g.outStarts) - 1
	g.inStarts = make([]uint32, numVertices+1)
	for _, dst := range g.outEdges {
		g.inStarts[dst+1]++
	}
	prefixSum(g.inStarts)

	g.inEdges = make([]graph.VertexID, len(g.outEdges))
	cursor := append([]uint32(nil), g.inStarts[:numVertices]...)
	for src := 0; src < numVertices; src++ {
		for _, dst := range g.outEdges[g.outStarts[src]:g.outStarts[src+1]] {
			g.inEdges[cursor[dst]] = graph.VertexID(src)
			cursor[dst]++
		}
	}
}

// VertexCount implements graph.View.
func (g *Graph) VertexCount() int { return len(g.outStarts) - 1 }

// EdgeCount implements graph.Graph.
func (g *Graph) EdgeCount() int { return len(g.outEdges) }

// OutDegree implements graph.View.
func (g *Graph) OutDegree(v graph.VertexID) int {
	return int(g.outStarts[v+1] - g.outStarts[v])
}

// Predecessors implements graph.View.
func (g *Graph) Predecessors(v graph.VertexID) []graph.VertexID {
	return g.inEdges[g.inStarts[v]:g.inStarts[v+1]]
}

// Outgoing returns the outgoing adjacency arrays. Callers must not modify
// the returned slices.
func (g *Graph) Outgoing() ([]uint32, []graph.VertexID) {
	return g.outStarts, g.outEdges
}

func prefixSum(counts []uint32) {
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
}
