package graph

import "golang.org/x/xerrors"

var (
	// ErrUnknownEdgeLinks is returned when attempting to create an edge
	// with a source and/or destination outside the graph's vertex range.
	ErrUnknownEdgeLinks = xerrors.New("unknown source and/or destination for edge")

	// ErrEmptyGraph is returned when attempting to rank a graph without
	// any vertices.
	ErrEmptyGraph = xerrors.New("graph has no vertices")
)
