package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate signals that a memory with the same content (ignoring
	// case) already exists. Save is a no-op in that case.
	ErrDuplicate = errors.New("memory already exists")

	// ErrEmptyContent is returned by Save for blank content.
	ErrEmptyContent = errors.New("memory content is empty")

	// ErrMalformedEntry marks a persisted entry that cannot become a memory.
	ErrMalformedEntry = errors.New("malformed memory entry")

	// ErrNotFound is returned when a memory id is unknown.
	ErrNotFound = errors.New("memory not found")
)

// PersistenceError reports that the record store rejected a write or
// delete. The in-memory state has already been updated.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persist %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err carries a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
