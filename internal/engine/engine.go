// Package engine wires the memory pipeline to chat message events.
package engine

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/chat"
	"github.com/rcliao/auto-memory/internal/config"
	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/inject"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/memory"
	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/notify"
	"github.com/rcliao/auto-memory/internal/relevance"
	"github.com/rcliao/auto-memory/internal/store"
	"github.com/rcliao/auto-memory/internal/summarize"
)

// Engine handles chat messages: every message is recorded, counted toward
// summarization and scanned for relevant memories.
type Engine struct {
	History  *chat.History
	Store    *memory.Store
	Trigger  *summarize.Trigger
	Scanner  *relevance.Scanner
	Injector inject.Injector
}

// Outcome describes what handling one message did.
type Outcome struct {
	Summarized bool           `json:"summarized"`
	Relevant   []model.Memory `json:"relevant"`
}

// New builds an engine from settings and loads the namespace's memories
// from backend.
func New(ctx context.Context, s *config.Settings, backend store.RecordStore, gen generator.Generator, sink notify.Sink, inj inject.Injector) (*Engine, error) {
	if sink == nil {
		sink = notify.Log{}
	}
	if inj == nil {
		inj = inject.NewPacker(s.InjectBudget, nil)
	}

	backup, err := memory.NewBackup(s.BackupFile(), memory.DefaultBackupLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open memory backup")
	}

	stop := s.StopWordSet()
	history := chat.NewHistory(0)
	mem := memory.New(backend,
		memory.WithNamespace(s.Namespace),
		memory.WithLimit(s.MemoryLimit),
		memory.WithStopWords(stop),
		memory.WithBackup(backup),
		memory.WithNotifier(sink),
	)
	if _, err := mem.Load(ctx); err != nil {
		return nil, err
	}

	trigger := summarize.New(history, generator.WithTimeout(gen, s.Generator.Timeout), mem,
		summarize.WithFrequency(s.Frequency),
		summarize.WithHistoryTurns(s.HistoryTurns),
		summarize.WithMinTurns(s.MinTurns),
		summarize.WithSentinel(s.Sentinel),
		summarize.WithCharacter(s.Character),
		summarize.WithStopWords(stop),
		summarize.WithNotifier(sink),
	)

	return &Engine{
		History:  history,
		Store:    mem,
		Trigger:  trigger,
		Scanner:  relevance.NewScanner(stop),
		Injector: inj,
	}, nil
}

// HandleMessage processes one chat message. A failed summarization pass
// is returned but does not prevent the relevance scan.
func (e *Engine) HandleMessage(ctx context.Context, turn model.Turn) (Outcome, error) {
	e.History.Add(turn)

	var out Outcome
	summarized, err := e.Trigger.Observe(ctx)
	out.Summarized = summarized
	if err != nil {
		logging.From(ctx).Warn("summarization pass failed", "error", err)
	}

	out.Relevant = e.Scanner.Apply(ctx, turn.Text, e.Store, e.Injector)
	return out, err
}
