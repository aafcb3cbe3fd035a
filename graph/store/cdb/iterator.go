package cdb

import (
	"database/sql"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// linkIterator iterates the IDs of the links stored in the link graph.
type linkIterator struct {
	rows      *sql.Rows
	lastErr   error
	latchedID uuid.UUID
}

// Next advances the iterator.
func (i *linkIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	i.lastErr = i.rows.Scan(&i.latchedID)
	return i.lastErr == nil
}

// Error returns the last error encountered by the iterator.
func (i *linkIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

// Close releases the underlying result set.
func (i *linkIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return xerrors.Errorf("link iterator: %w", err)
	}
	return nil
}

// LinkID returns the currently fetched link ID.
func (i *linkIterator) LinkID() uuid.UUID {
	return i.latchedID
}

// edgeIterator iterates the (src, dst) pairs of the edges stored in the link
// graph.
type edgeIterator struct {
	rows       *sql.Rows
	lastErr    error
	latchedSrc uuid.UUID
	latchedDst uuid.UUID
}

// Next advances the iterator.
func (i *edgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	i.lastErr = i.rows.Scan(&i.latchedSrc, &i.latchedDst)
	return i.lastErr == nil
}

// Error returns the last error encountered by the iterator.
func (i *edgeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}
	return i.rows.Err()
}

// Close releases the underlying result set.
func (i *edgeIterator) Close() error {
	err := i.rows.Close()
	if err != nil {
		return xerrors.Errorf("edge iterator: %w", err)
	}
	return nil
}

// Endpoints returns the source and destination of the currently fetched edge.
func (i *edgeIterator) Endpoints() (uuid.UUID, uuid.UUID) {
	return i.latchedSrc, i.latchedDst
}
