package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/model"
)

// DefaultBackupLimit bounds the local backup of unpersisted memories.
const DefaultBackupLimit = 50

// Backup keeps memories whose persistence failed so they are not lost. It
// holds at most limit records, dropping the oldest. With an empty path the
// backup lives in memory only.
type Backup struct {
	mu    sync.Mutex
	path  string
	limit int
	items []model.Memory
}

// NewBackup opens the backup file at path, if any.
func NewBackup(path string, limit int) (*Backup, error) {
	if limit <= 0 {
		limit = DefaultBackupLimit
	}
	b := &Backup{path: path, limit: limit}
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return b, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "read backup", goerr.V("path", path))
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &b.items); err != nil {
			return nil, goerr.Wrap(err, "parse backup", goerr.V("path", path))
		}
	}
	b.trim()
	return b, nil
}

// Push appends m, evicting the oldest record past the limit.
func (b *Backup) Push(m model.Memory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, m)
	b.trim()
	return b.flush()
}

// List returns the backed-up records, oldest first.
func (b *Backup) List() []model.Memory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Remove drops the records with the given ids.
func (b *Backup) Remove(ids ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = slices.DeleteFunc(b.items, func(m model.Memory) bool {
		return slices.Contains(ids, m.ID)
	})
	return b.flush()
}

func (b *Backup) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Backup) trim() {
	if over := len(b.items) - b.limit; over > 0 {
		b.items = slices.Delete(b.items, 0, over)
	}
}

func (b *Backup) flush() error {
	if b.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return goerr.Wrap(err, "create backup dir", goerr.V("path", b.path))
	}
	data, err := json.MarshalIndent(b.items, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "encode backup")
	}
	if err := os.WriteFile(b.path, data, 0o600); err != nil {
		return goerr.Wrap(err, "write backup", goerr.V("path", b.path))
	}
	return nil
}
