package engine_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/config"
	"github.com/rcliao/auto-memory/internal/engine"
	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/inject"
	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/notify"
	"github.com/rcliao/auto-memory/internal/store"
	"github.com/rcliao/auto-memory/internal/summarize"
)

func setup(t *testing.T, gen generator.Generator) (*engine.Engine, *store.SQLiteStore, *inject.Packer) {
	t.Helper()
	dir := t.TempDir()

	s := config.Default()
	s.Frequency = 3
	s.Store.Path = filepath.Join(dir, "memory.db")
	s.BackupPath = filepath.Join(dir, "backup.json")

	backend, err := store.NewSQLiteStore(s.DBPath())
	gt.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	packer := inject.NewPacker(s.InjectBudget, nil)
	e, err := engine.New(context.Background(), s, backend, gen, notify.Discard{}, packer)
	gt.NoError(t, err)
	return e, backend, packer
}

func TestHandleMessageSummarizesAndRecalls(t *testing.T) {
	ctx := context.Background()
	calls := &atomic.Int32{}
	gen := generator.Func(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "Alice adores chamomile tea", nil
	})
	e, backend, packer := setup(t, gen)

	for _, text := range []string{"Hello there", "What do you drink?", "Mostly herbal stuff"} {
		_, err := e.HandleMessage(ctx, model.Turn{Speaker: "User", Text: text})
		gt.NoError(t, err)
	}
	gt.Equal(t, calls.Load(), int32(1))
	gt.Equal(t, e.Store.Len(), 1)

	entries, err := backend.ListByNamespace(ctx, "AutoMemory")
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)

	out, err := e.HandleMessage(ctx, model.Turn{Speaker: "User", Text: "Should I brew chamomile?"})
	gt.NoError(t, err)
	gt.False(t, out.Summarized)
	gt.A(t, out.Relevant).Length(1)
	gt.True(t, out.Relevant[0].LastUsed != nil)

	block := packer.Take()
	gt.NotNil(t, block)
	gt.S(t, block.String()).Contains("Alice adores chamomile tea")

	got, err := backend.Get(ctx, entries[0].ID)
	gt.NoError(t, err)
	gt.Equal(t, got.AccessCount, 1)
}

func TestHandleMessageGenerationFailure(t *testing.T) {
	ctx := context.Background()
	gen := generator.Func(func(context.Context, string) (string, error) {
		return "", errors.New("offline")
	})
	e, _, _ := setup(t, gen)

	var lastErr error
	for range 3 {
		_, lastErr = e.HandleMessage(ctx, model.Turn{Speaker: "User", Text: "hello"})
	}
	gt.Error(t, lastErr)
	gt.True(t, summarize.IsGeneration(lastErr))
	gt.Equal(t, e.Store.Len(), 0)
}

func TestNewLoadsExisting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := config.Default()
	s.Store.Path = filepath.Join(dir, "memory.db")
	s.BackupPath = filepath.Join(dir, "backup.json")

	backend, err := store.NewSQLiteStore(s.DBPath())
	gt.NoError(t, err)
	defer backend.Close()

	out := &bytes.Buffer{}
	first, err := engine.New(ctx, s, backend, generator.Func(nil), notify.NewWriter(out), nil)
	gt.NoError(t, err)
	_, err = first.Store.Save(ctx, "Bob keeps bees", []string{"bob", "keeps", "bees"}, "")
	gt.NoError(t, err)
	gt.S(t, out.String()).Contains("Saved memory")

	second, err := engine.New(ctx, s, backend, generator.Func(nil), nil, nil)
	gt.NoError(t, err)
	records := second.Store.Records()
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Content, "Bob keeps bees")
	gt.Equal(t, records[0].Keywords, []string{"bob", "keeps", "bees"})
}
