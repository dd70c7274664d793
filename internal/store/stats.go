package store

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string           `json:"db_path"`
	DBSizeBytes  int64            `json:"db_size_bytes"`
	TotalEntries int              `json:"total_entries"`
	Accessed     int              `json:"accessed_entries"`
	Namespaces   []NamespaceStats `json:"namespaces"`
}

// NamespaceStats holds per-namespace counts.
type NamespaceStats struct {
	NS       string `json:"ns"`
	Count    int    `json:"count"`
	Accesses int    `json:"accesses"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE access_count > 0`).Scan(&st.Accessed)

	rows, err := s.db.QueryContext(ctx, `
		SELECT ns, COUNT(*) AS cnt, COALESCE(SUM(access_count), 0)
		FROM entries GROUP BY ns ORDER BY cnt DESC`)
	if err != nil {
		return st, goerr.Wrap(err, "namespace stats")
	}
	defer rows.Close()

	for rows.Next() {
		var ns NamespaceStats
		rows.Scan(&ns.NS, &ns.Count, &ns.Accesses)
		st.Namespaces = append(st.Namespaces, ns)
	}

	return st, nil
}
