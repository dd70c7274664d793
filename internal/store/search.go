package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/model"
)

// SearchParams holds parameters for searching entries.
type SearchParams struct {
	NS    string
	Query string
	Limit int
}

// likeEscaper makes LIKE wildcards in a query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds entries whose content, comment or keywords contain the query
// substring (case-insensitive).
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + likeEscaper.Replace(strings.ToLower(p.Query)) + "%"

	where := []string{`(LOWER(content) LIKE ? ESCAPE '\' OR LOWER(comment) LIKE ? ESCAPE '\' OR LOWER(keywords) LIKE ? ESCAPE '\')`}
	args := []interface{}{query, query, query}

	if p.NS != "" {
		where = append(where, "ns = ?")
		args = append(args, p.NS)
	}

	sql := fmt.Sprintf(`
		SELECT %s FROM entries
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, entryColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "search entries", goerr.V("query", p.Query))
	}
	defer rows.Close()

	return scanEntries(rows)
}
