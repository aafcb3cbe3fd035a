// Package edgelist loads graphs stored as whitespace-separated
// "<source-id> <destination-id>" pairs.
package edgelist

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
)

// ErrMalformedInput is returned when the edge list cannot be parsed.
var ErrMalformedInput = xerrors.New("malformed edge list")

// LoadFile reads an edge list from the file at path.
func LoadFile(path string) (*graph.EdgeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("edge list: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load reads an edge list from r. Vertex IDs in the input need not be
// contiguous; they are remapped to dense IDs in the order they are first
// encountered and the original IDs are retained as vertex labels.
func Load(r io.Reader) (*graph.EdgeList, error) {
	var (
		scanner = bufio.NewScanner(r)
		el      = new(graph.EdgeList)
		idIndex = make(map[uint64]graph.VertexID)
		pending graph.VertexID
		tokens  int
	)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		tokens++
		origID, err := strconv.ParseUint(scanner.Text(), 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("token %d (%q): %w", tokens, scanner.Text(), ErrMalformedInput)
		}

		id, known := idIndex[origID]
		if !known {
			if len(el.Labels) == math.MaxUint32 {
				return nil, xerrors.Errorf("token %d: too many distinct vertices: %w", tokens, ErrMalformedInput)
			}
			id = graph.VertexID(len(el.Labels))
			idIndex[origID] = id
			el.Labels = append(el.Labels, strconv.FormatUint(origID, 10))
		}

		if tokens%2 == 1 {
			pending = id
			continue
		}
		el.Edges = append(el.Edges, graph.Edge{Src: pending, Dst: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("edge list: %w", err)
	}
	if tokens%2 == 1 {
		return nil, xerrors.Errorf("token %d: source without destination: %w", tokens, ErrMalformedInput)
	}

	el.NumVertices = len(el.Labels)
	return el, nil
}
