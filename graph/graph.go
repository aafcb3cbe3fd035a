package graph

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/linksrus/parallelrank/graph View

// VertexID is a dense vertex identifier in the [0, N) range.
type VertexID uint32

// View is implemented by read-only graph representations that can be ranked.
// Implementations must not be mutated while a View is in use.
type View interface {
	// VertexCount returns the number of vertices in the graph.
	VertexCount() int

	// OutDegree returns the number of edges originating at v.
	OutDegree(v VertexID) int

	// Predecessors returns the IDs of the vertices with an edge pointing
	// to v. A vertex appears once for each edge it contributes to v.
	// Callers must not modify the returned slice.
	Predecessors(v VertexID) []VertexID
}

// Graph extends View with statistics that are useful for reporting.
type Graph interface {
	View

	// EdgeCount returns the total number of edges in the graph.
	EdgeCount() int
}

// Iterator is implemented by graph objects that can be iterated.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error
}

// EdgeIterator is implemented by objects that can iterate graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge.
	Edge() Edge
}

// Edge describes a directed graph edge that originates from Src and
// terminates at Dst.
type Edge struct {
	Src VertexID
	Dst VertexID
}

// EdgeList is the loader-facing description of a graph: a vertex count, the
// list of edges between dense vertex IDs and an optional label for each
// vertex that maps it back to the ID used by the original input.
type EdgeList struct {
	NumVertices int
	Edges       []Edge

	// Labels, if not empty, has NumVertices entries.
	Labels []string
}

// Iterator returns an EdgeIterator over the edges in the list.
func (l *EdgeList) Iterator() EdgeIterator {
	return &sliceEdgeIterator{edges: l.Edges}
}

// sliceEdgeIterator is an EdgeIterator implementation backed by a slice.
type sliceEdgeIterator struct {
	edges    []Edge
	curIndex int
}

// Next implements EdgeIterator.
func (i *sliceEdgeIterator) Next() bool {
	if i.curIndex >= len(i.edges) {
		return false
	}
	i.curIndex++
	return true
}

// Error implements EdgeIterator.
func (i *sliceEdgeIterator) Error() error { return nil }

// Close implements EdgeIterator.
func (i *sliceEdgeIterator) Close() error { return nil }

// Edge implements EdgeIterator.
func (i *sliceEdgeIterator) Edge() Edge { return i.edges[i.curIndex-1] }
