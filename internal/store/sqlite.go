package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/auto-memory/internal/model"
)

// timeFormat sorts lexicographically, unlike RFC3339Nano which trims zeros.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements RecordStore using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "create db dir", goerr.V("dir", dir))
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, goerr.Wrap(err, "open db", goerr.V("path", dbPath))
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "migrate", goerr.V("path", dbPath))
	}

	return s, nil
}

func (s *SQLiteStore) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id               TEXT PRIMARY KEY,
		ns               TEXT NOT NULL,
		comment          TEXT NOT NULL DEFAULT '',
		keywords         TEXT,
		content          TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		access_count     INTEGER NOT NULL DEFAULT 0,
		last_accessed_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_ns ON entries(ns);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const entryColumns = `id, ns, comment, keywords, content, created_at, access_count, last_accessed_at`

func (s *SQLiteStore) ListByNamespace(ctx context.Context, ns string) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE ns = ?
		 ORDER BY created_at DESC, id DESC`, ns)
	if err != nil {
		return nil, goerr.Wrap(err, "list entries", goerr.V("ns", ns))
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *SQLiteStore) Create(ctx context.Context, e model.Entry) (*model.Entry, error) {
	if strings.TrimSpace(e.Content) == "" {
		return nil, goerr.New("entry content is empty", goerr.V("ns", e.Namespace))
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.ID == "" {
		e.ID = s.newID(e.CreatedAt)
	}

	var keywordsJSON *string
	if len(e.Keywords) > 0 {
		b, _ := json.Marshal(e.Keywords)
		k := string(b)
		keywordsJSON = &k
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, ns, comment, keywords, content, created_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		e.ID, e.Namespace, e.Comment, keywordsJSON, e.Content, e.CreatedAt.Format(timeFormat))
	if err != nil {
		return nil, goerr.Wrap(err, "insert entry", goerr.V("id", e.ID))
	}

	e.AccessCount = 0
	e.LastAccessedAt = nil
	return &e, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "delete entry", goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(ErrNotFound, "delete entry", goerr.V("id", id))
	}
	return nil
}

func (s *SQLiteStore) DeleteByNamespace(ctx context.Context, ns string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE ns = ?`, ns)
	if err != nil {
		return 0, goerr.Wrap(err, "delete namespace", goerr.V("ns", ns))
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Touch bumps access tracking for ids.
func (s *SQLiteStore) Touch(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := []interface{}{at.UTC().Format(timeFormat)}
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET access_count = access_count + 1, last_accessed_at = ?
		 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return goerr.Wrap(err, "touch entries", goerr.V("count", len(ids)))
	}
	return nil
}

// Get returns a single entry by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(ErrNotFound, "get entry", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "get entry", goerr.V("id", id))
	}
	return &e, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntries(rows *sql.Rows) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "scan entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "iterate entries")
	}
	return entries, nil
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var keywordsJSON, lastAccessed sql.NullString
	var createdAt string

	err := row.Scan(
		&e.ID, &e.Namespace, &e.Comment, &keywordsJSON, &e.Content,
		&createdAt, &e.AccessCount, &lastAccessed,
	)
	if err != nil {
		return e, err
	}

	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if keywordsJSON.Valid {
		json.Unmarshal([]byte(keywordsJSON.String), &e.Keywords)
	}
	if lastAccessed.Valid {
		t, _ := time.Parse(timeFormat, lastAccessed.String)
		e.LastAccessedAt = &t
	}

	return e, nil
}

var (
	_ RecordStore = (*SQLiteStore)(nil)
	_ Toucher     = (*SQLiteStore)(nil)
)
