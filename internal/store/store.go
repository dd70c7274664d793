// Package store provides the persistent lore record store and its SQLite
// and Firestore implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/auto-memory/internal/model"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("entry not found")

// RecordStore is the lore/world-info collaborator that persists memory
// entries grouped by namespace.
type RecordStore interface {
	// ListByNamespace returns every entry of ns, newest first.
	ListByNamespace(ctx context.Context, ns string) ([]model.Entry, error)

	// Create persists e. An empty ID is assigned by the store.
	Create(ctx context.Context, e model.Entry) (*model.Entry, error)

	// Delete removes a single entry.
	Delete(ctx context.Context, id string) error

	// DeleteByNamespace removes every entry of ns and returns how many
	// were removed.
	DeleteByNamespace(ctx context.Context, ns string) (int, error)

	Close() error
}

// Toucher is implemented by stores that track entry access.
type Toucher interface {
	Touch(ctx context.Context, ids []string, at time.Time) error
}
