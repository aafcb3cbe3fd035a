package cdb

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linksrus/parallelrank/graph"
	"golang.org/x/xerrors"
)

var (
	linksQuery = "SELECT id FROM links ORDER BY id"
	edgesQuery = "SELECT src, dst FROM edges WHERE updated_at < $1"

	// ErrMissingSchema is returned when the link graph tables do not exist
	// in the target database.
	ErrMissingSchema = xerrors.New("link graph schema not found")
)

// CockroachDBSource loads the link graph maintained by the Links 'R' Us
// crawler from a cockroachdb (or any postgres-compatible) instance.
type CockroachDBSource struct {
	db *sql.DB
}

// NewCockroachDBSource returns a CockroachDBSource instance that connects to
// the cockroachdb instance specified by dsn.
func NewCockroachDBSource(dsn string) (*CockroachDBSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return &CockroachDBSource{db: db}, nil
}

// Close terminates the connection to the backing cockroachdb instance.
func (c *CockroachDBSource) Close() error {
	return c.db.Close()
}

// EdgeList fetches all links and the edges between them that were updated
// before the provided timestamp. Link UUIDs are mapped to dense vertex IDs in
// ascending UUID order and retained as the vertex labels. Edges whose
// endpoints are not known links are skipped.
func (c *CockroachDBSource) EdgeList(updatedBefore time.Time) (*graph.EdgeList, error) {
	linkIt, err := c.links()
	if err != nil {
		return nil, err
	}

	var (
		el      = new(graph.EdgeList)
		idIndex = make(map[uuid.UUID]graph.VertexID)
	)
	for linkIt.Next() {
		id := linkIt.LinkID()
		idIndex[id] = graph.VertexID(len(el.Labels))
		el.Labels = append(el.Labels, id.String())
	}
	if err = linkIt.Error(); err != nil {
		_ = linkIt.Close()
		return nil, xerrors.Errorf("links: %w", err)
	}
	if err = linkIt.Close(); err != nil {
		return nil, err
	}
	el.NumVertices = len(el.Labels)

	edgeIt, err := c.edges(updatedBefore)
	if err != nil {
		return nil, err
	}
	for edgeIt.Next() {
		src, dst := edgeIt.Endpoints()
		srcID, srcKnown := idIndex[src]
		dstID, dstKnown := idIndex[dst]
		if !srcKnown || !dstKnown {
			continue
		}
		el.Edges = append(el.Edges, graph.Edge{Src: srcID, Dst: dstID})
	}
	if err = edgeIt.Error(); err != nil {
		_ = edgeIt.Close()
		return nil, xerrors.Errorf("edges: %w", err)
	}
	if err = edgeIt.Close(); err != nil {
		return nil, err
	}

	return el, nil
}

func (c *CockroachDBSource) links() (*linkIterator, error) {
	rows, err := c.db.Query(linksQuery)
	if err != nil {
		return nil, xerrors.Errorf("links: %w", translateError(err))
	}

	return &linkIterator{rows: rows}, nil
}

func (c *CockroachDBSource) edges(updatedBefore time.Time) (*edgeIterator, error) {
	rows, err := c.db.Query(edgesQuery, updatedBefore.UTC())
	if err != nil {
		return nil, xerrors.Errorf("edges: %w", translateError(err))
	}

	return &edgeIterator{rows: rows}, nil
}

// translateError maps well-known postgres errors to package errors.
func translateError(err error) error {
	pqErr, valid := err.(*pq.Error)
	if !valid {
		return err
	}

	if pqErr.Code.Name() == "undefined_table" {
		return ErrMissingSchema
	}
	return err
}
