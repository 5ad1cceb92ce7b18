package ineld

import (
	"errors"
	"fmt"
)

// Index errors
var (
	// ErrOutOfRange indicates that a row, column, group or child index is
	// outside the current bounds.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidHandle indicates that a handle does not refer to a live element.
	ErrInvalidHandle = errors.New("invalid element handle")
)

// Structure errors
var (
	// ErrPlacement indicates that the parent's child placement does not
	// support the requested operation (e.g. positional insert into a table).
	ErrPlacement = errors.New("operation not supported by child placement")

	// ErrCycle indicates that an element would become its own descendant.
	ErrCycle = errors.New("element cannot contain itself")

	// ErrLastGroup indicates that removing groups would leave a container groupless.
	ErrLastGroup = errors.New("cannot remove every group")
)

// Grid errors
var (
	// ErrLastRow indicates an attempt to remove the only row of a table.
	ErrLastRow = errors.New("cannot remove the last row")

	// ErrLastColumn indicates an attempt to remove the only column of a table.
	ErrLastColumn = errors.New("cannot remove the last column")

	// ErrMergeBounds indicates that a merge would extend past the table edge.
	ErrMergeBounds = errors.New("merge extends past table bounds")

	// ErrNotMerged indicates an unmerge of a cell that is not part of a span.
	ErrNotMerged = errors.New("cell is not merged")

	// ErrGeometry indicates cell descriptions that do not tile the table.
	ErrGeometry = errors.New("cells do not tile the table")
)

// Registry errors
var (
	// ErrDocumentNotFound indicates an unknown document identifier.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDuplicateDocument indicates a second registration of the same identifier.
	ErrDuplicateDocument = errors.New("document already registered")

	// ErrRegistryClosed indicates use of a registry after Shutdown.
	ErrRegistryClosed = errors.New("registry is shut down")

	// ErrNoArchive indicates Save or Load on a registry without an archive.
	ErrNoArchive = errors.New("registry has no archive")
)

// ErrCursorNotFound indicates a cursor that is not tracked by the set.
var ErrCursorNotFound = errors.New("cursor not tracked")

// ErrUnknownTag indicates a snapshot naming an element type this package
// does not know.
var ErrUnknownTag = errors.New("unknown element tag")

// ErrReentrant is the panic value raised when a notification or cursor
// repair callback mutates the tree that is notifying it.
var ErrReentrant = errors.New("re-entrant tree mutation from a callback")

// InvariantError reports broken internal bookkeeping. It is raised with
// panic, never returned: it means the algorithms are wrong, not the caller.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "ineld: invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
