package harness

import (
	"strconv"
	"strings"
	"time"

	"github.com/linksrus/parallelrank/graph"
	"github.com/linksrus/parallelrank/graph/edgelist"
	"github.com/linksrus/parallelrank/graph/snapshot"
	"github.com/linksrus/parallelrank/graph/store/cdb"
	"github.com/linksrus/parallelrank/graph/store/csr"
	"github.com/linksrus/parallelrank/graph/store/memory"
	"golang.org/x/xerrors"
)

// Backing selects the in-memory graph representation used for ranking.
type Backing string

const (
	// BackingCSR stores graphs as compact adjacency arrays.
	BackingCSR Backing = "csr"

	// BackingMap stores graphs as a map of per-vertex adjacency lists.
	BackingMap Backing = "map"
)

// LoadedGraph is a graph together with the labels that map its dense vertex
// IDs back to the IDs used by the original source.
type LoadedGraph struct {
	graph.Graph

	Labels []string
}

// Label returns the label of vertex v.
func (g *LoadedGraph) Label(v int) string {
	if v < len(g.Labels) {
		return g.Labels[v]
	}
	return strconv.Itoa(v)
}

// OpenGraph loads the graph described by source. Supported sources are
// postgresql:// URIs pointing at a link graph database, ".bin" snapshot files
// and text edge lists. Snapshots are always loaded into a CSR graph.
func OpenGraph(source string, backing Backing, updatedBefore time.Time) (*LoadedGraph, error) {
	switch {
	case strings.HasPrefix(source, "postgresql://"):
		src, err := cdb.NewCockroachDBSource(source)
		if err != nil {
			return nil, err
		}
		defer func() { _ = src.Close() }()

		el, err := src.EdgeList(updatedBefore)
		if err != nil {
			return nil, err
		}
		return fromEdgeList(el, backing)
	case strings.HasSuffix(source, ".bin"):
		g, labels, err := snapshot.ReadFile(source)
		if err != nil {
			return nil, err
		}
		return &LoadedGraph{Graph: g, Labels: labels}, nil
	default:
		el, err := edgelist.LoadFile(source)
		if err != nil {
			return nil, err
		}
		return fromEdgeList(el, backing)
	}
}

// ConvertToSnapshot parses the text edge list at textPath and stores it as a
// binary snapshot at outPath.
func ConvertToSnapshot(textPath, outPath string) (*LoadedGraph, error) {
	el, err := edgelist.LoadFile(textPath)
	if err != nil {
		return nil, err
	}

	g, err := csr.Build(el.NumVertices, el.Iterator())
	if err != nil {
		return nil, err
	}
	if err = snapshot.WriteFile(outPath, g, el.Labels); err != nil {
		return nil, err
	}
	return &LoadedGraph{Graph: g, Labels: el.Labels}, nil
}

func fromEdgeList(el *graph.EdgeList, backing Backing) (*LoadedGraph, error) {
	var (
		g   graph.Graph
		err error
	)
	switch backing {
	case BackingMap:
		g, err = memory.FromEdgeList(el)
	case BackingCSR, "":
		g, err = csr.Build(el.NumVertices, el.Iterator())
	default:
		return nil, xerrors.Errorf("unsupported graph backing %q", backing)
	}
	if err != nil {
		return nil, err
	}

	return &LoadedGraph{Graph: g, Labels: el.Labels}, nil
}
