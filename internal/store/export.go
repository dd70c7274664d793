package store

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/model"
)

// ExportAll returns all entries, optionally filtered by namespace.
func (s *SQLiteStore) ExportAll(ctx context.Context, ns string) ([]model.Entry, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if ns != "" {
		where = append(where, "ns = ?")
		args = append(args, ns)
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ns, created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "export entries", goerr.V("ns", ns))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Import stores entries from an export. Entries whose id already exists
// are skipped; the number of inserted entries is returned.
func (s *SQLiteStore) Import(ctx context.Context, entries []model.Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		if e.ID != "" {
			if _, err := s.Get(ctx, e.ID); err == nil {
				continue
			}
		}
		if _, err := s.Create(ctx, e); err != nil {
			return imported, goerr.Wrap(err, "import entry", goerr.V("id", e.ID))
		}
		imported++
	}
	return imported, nil
}
