package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/model"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Create(ctx, model.Entry{Namespace: "mem", Content: "Go is a compiled language", Keywords: []string{"golang"}})
	s.Create(ctx, model.Entry{Namespace: "mem", Content: "Python is an interpreted Language"})
	s.Create(ctx, model.Entry{Namespace: "other", Content: "Rust has a borrow checker"})

	results, err := s.Search(ctx, SearchParams{Query: "language"})
	gt.NoError(t, err)
	gt.A(t, results).Length(2)

	results, err = s.Search(ctx, SearchParams{NS: "other", Query: "language"})
	gt.NoError(t, err)
	gt.A(t, results).Length(0)

	results, err = s.Search(ctx, SearchParams{Query: "golang"})
	gt.NoError(t, err)
	gt.A(t, results).Length(1)

	results, err = s.Search(ctx, SearchParams{Query: "javascript"})
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestSearchWildcardsAreLiteral(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Create(ctx, model.Entry{Namespace: "mem", Content: "She is 100% sure"})
	s.Create(ctx, model.Entry{Namespace: "mem", Content: "He names files in snake_case"})
	s.Create(ctx, model.Entry{Namespace: "mem", Content: "Plain words only"})

	results, err := s.Search(ctx, SearchParams{Query: "%"})
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].Content, "She is 100% sure")

	results, err = s.Search(ctx, SearchParams{Query: "e_c"})
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].Content, "He names files in snake_case")

	results, err = s.Search(ctx, SearchParams{Query: "s_r"})
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewSQLiteStore(dbPath)
	gt.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	a, _ := s.Create(ctx, model.Entry{Namespace: "ns1", Content: "hello"})
	s.Create(ctx, model.Entry{Namespace: "ns1", Content: "world"})
	s.Create(ctx, model.Entry{Namespace: "ns2", Content: "test"})
	s.Touch(ctx, []string{a.ID}, a.CreatedAt)

	stats, err := s.Stats(ctx, dbPath)
	gt.NoError(t, err)
	gt.Equal(t, stats.TotalEntries, 3)
	gt.Equal(t, stats.Accessed, 1)
	gt.A(t, stats.Namespaces).Length(2)
	gt.Equal(t, stats.Namespaces[0].NS, "ns1")
	gt.True(t, stats.DBSizeBytes > 0)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	s1, _ := NewSQLiteStore(filepath.Join(dir, "src.db"))
	defer s1.Close()
	ctx := context.Background()

	s1.Create(ctx, model.Entry{Namespace: "test", Content: "alpha", Keywords: []string{"alpha"}})
	s1.Create(ctx, model.Entry{Namespace: "test", Content: "beta"})

	exported, err := s1.ExportAll(ctx, "")
	gt.NoError(t, err)
	gt.A(t, exported).Length(2)

	s2, _ := NewSQLiteStore(filepath.Join(dir, "dst.db"))
	defer s2.Close()

	n, err := s2.Import(ctx, exported)
	gt.NoError(t, err)
	gt.Equal(t, n, 2)

	// Re-importing the same ids is a no-op.
	n, err = s2.Import(ctx, exported)
	gt.NoError(t, err)
	gt.Equal(t, n, 0)

	got, _ := s2.ListByNamespace(ctx, "test")
	gt.A(t, got).Length(2)
}
