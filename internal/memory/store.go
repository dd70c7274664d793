// Package memory holds the authoritative, capacity-bounded collection of
// memories and keeps it in sync with the persistent record store.
package memory

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oklog/ulid/v2"

	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/notify"
	"github.com/rcliao/auto-memory/internal/store"
)

const (
	DefaultNamespace = "AutoMemory"
	DefaultLimit     = 20
)

// Store is the in-memory collection of memories, newest first. All
// operations are serialized; backend calls of one operation run while the
// lock is held so that dedup and eviction stay consistent.
type Store struct {
	mu      sync.Mutex
	records []model.Memory

	backend  store.RecordStore
	ns       string
	limit    int
	stop     keyword.StopWords
	backup   *Backup
	notifier notify.Sink
	now      func() time.Time
	entropy  *ulid.MonotonicEntropy
}

type Option func(*Store)

func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.ns = ns
		}
	}
}

// WithLimit sets the maximum number of records kept.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithStopWords sets the stop words removed from saved keywords.
func WithStopWords(stop keyword.StopWords) Option {
	return func(s *Store) {
		if stop != nil {
			s.stop = stop
		}
	}
}

func WithBackup(b *Backup) Option {
	return func(s *Store) {
		if b != nil {
			s.backup = b
		}
	}
}

func WithNotifier(n notify.Sink) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store backed by backend.
func New(backend store.RecordStore, opts ...Option) *Store {
	backup, _ := NewBackup("", DefaultBackupLimit)
	s := &Store{
		backend:  backend,
		ns:       DefaultNamespace,
		limit:    DefaultLimit,
		stop:     keyword.DefaultStopWords(),
		backup:   backup,
		notifier: notify.Discard{},
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Namespace() string { return s.ns }
func (s *Store) Limit() int        { return s.limit }
func (s *Store) Backup() *Backup   { return s.backup }

// Reset empties the in-memory collection without touching persistence.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the collection, newest first.
func (s *Store) Records() []model.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Memory, len(s.records))
	for i, r := range s.records {
		out[i] = clone(r)
	}
	return out
}

// Load replaces the collection with the namespace's persisted entries.
func (s *Store) Load(ctx context.Context) ([]model.Memory, error) {
	entries, err := s.backend.ListByNamespace(ctx, s.ns)
	if err != nil {
		return nil, goerr.Wrap(err, "load memories", goerr.V("ns", s.ns))
	}
	return s.LoadAll(ctx, entries), nil
}

// LoadAll replaces the collection with the entries of entries that belong
// to the namespace. Malformed entries are skipped, as are older entries
// whose content equals a newer one ignoring case. At most Limit records, the
// newest, are kept.
func (s *Store) LoadAll(ctx context.Context, entries []model.Entry) []model.Memory {
	logger := logging.From(ctx)

	var loaded []model.Memory
	for _, e := range entries {
		if !Belongs(e, s.ns) {
			continue
		}
		m, err := FromEntry(s.ns, e)
		if err != nil {
			logger.Debug("skip entry", "id", e.ID, "error", err)
			continue
		}
		loaded = append(loaded, m)
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].CreatedAt.After(loaded[j].CreatedAt)
	})
	seen := make(map[string]bool, len(loaded))
	loaded = slices.DeleteFunc(loaded, func(m model.Memory) bool {
		key := strings.ToLower(m.Content)
		if seen[key] {
			logger.Debug("skip duplicate entry", "id", m.ID, "content", m.Content)
			return true
		}
		seen[key] = true
		return false
	})
	if len(loaded) > s.limit {
		logger.Info("loaded more memories than the limit", "loaded", len(loaded), "limit", s.limit)
		loaded = loaded[:s.limit]
	}

	s.mu.Lock()
	s.records = loaded
	s.mu.Unlock()

	logger.Debug("memories loaded", "ns", s.ns, "count", len(loaded))
	return s.Records()
}

// Save adds a memory at the head of the collection.
//
// It returns ErrDuplicate, and changes nothing, when a record with the same
// content ignoring case exists. When the collection grows past Limit the
// oldest record is evicted and deleted from the backend. If the backend
// rejects the new record it is still kept, copied to the local backup, and
// returned together with a *PersistenceError. Keywords are normalized with
// keyword.Normalize.
func (s *Store) Save(ctx context.Context, content string, keywords []string, character string) (*model.Memory, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logging.From(ctx)

	if dup := s.findContentLocked(content); dup >= 0 {
		logger.Debug("memory already exists", "id", s.records[dup].ID, "content", content)
		return nil, goerr.Wrap(ErrDuplicate, "save memory", goerr.V("id", s.records[dup].ID))
	}

	now := s.now()
	m := model.Memory{
		ID:        ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		Content:   content,
		Keywords:  keyword.Normalize(keywords, s.stop),
		Character: character,
		CreatedAt: now,
	}
	s.records = slices.Insert(s.records, 0, m)
	s.evictLocked(ctx)

	out := clone(m)
	if err := s.persistLocked(ctx, m); err != nil {
		return &out, err
	}

	logger.Info("saved memory", "id", m.ID, "content", m.Content, "keywords", m.Keywords)
	s.notifier.Notify(ctx, "Saved memory: "+m.Content, model.NoticeInfo)
	return &out, nil
}

// Forget removes a single memory and its persisted entry.
func (s *Store) Forget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.records, func(m model.Memory) bool { return m.ID == id })
	if i < 0 {
		return goerr.Wrap(ErrNotFound, "forget memory", goerr.V("id", id))
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.backup.Remove(id)

	if err := s.backend.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.From(ctx).Warn("failed to delete memory entry", "id", id, "error", err)
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	logging.From(ctx).Info("forgot memory", "id", id)
	return nil
}

// ClearAll empties the collection and deletes every entry of the
// namespace. The collection stays empty even if the backend fails.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logging.From(ctx)

	s.records = nil
	if items := s.backup.List(); len(items) > 0 {
		ids := make([]string, len(items))
		for i, m := range items {
			ids[i] = m.ID
		}
		if err := s.backup.Remove(ids...); err != nil {
			logger.Warn("failed to clear memory backup", "error", err)
		}
	}

	n, err := s.backend.DeleteByNamespace(ctx, s.ns)
	if err != nil {
		logger.Error("failed to clear memory entries", "ns", s.ns, "error", err)
		s.notifier.Notify(ctx, "Could not clear stored memories", model.NoticeError)
		return &PersistenceError{Op: "clear", Err: err}
	}

	logger.Info("cleared all memories", "ns", s.ns, "deleted", n)
	s.notifier.Notify(ctx, "Cleared all memories", model.NoticeInfo)
	return nil
}

// Touch marks the given records as used at at. Access tracking is also
// persisted when the backend supports it.
func (s *Store) Touch(ctx context.Context, ids []string, at time.Time) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	for i := range s.records {
		if slices.Contains(ids, s.records[i].ID) {
			used := at
			s.records[i].LastUsed = &used
		}
	}
	s.mu.Unlock()

	if t, ok := s.backend.(store.Toucher); ok {
		if err := t.Touch(ctx, ids, at); err != nil {
			logging.From(ctx).Warn("failed to record memory access", "count", len(ids), "error", err)
		}
	}
}

// FlushBackup pushes backed-up records to the backend again. Records that
// are no longer wanted (duplicates, or older than everything in a full
// store) are dropped from the backup. It returns how many were persisted.
func (s *Store) FlushBackup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := logging.From(ctx)

	flushed := 0
	var firstErr error
	for _, m := range s.backup.List() {
		i := slices.IndexFunc(s.records, func(r model.Memory) bool { return r.ID == m.ID })
		if i < 0 {
			if s.findContentLocked(m.Content) >= 0 || !s.restoreLocked(ctx, m) {
				s.backup.Remove(m.ID)
				continue
			}
		}

		if _, err := s.backend.Create(ctx, ToEntry(s.ns, m)); err != nil {
			logger.Warn("memory still not persisted", "id", m.ID, "error", err)
			if firstErr == nil {
				firstErr = &PersistenceError{Op: "create", ID: m.ID, Err: err}
			}
			continue
		}
		if err := s.backup.Remove(m.ID); err != nil {
			logger.Warn("failed to update memory backup", "error", err)
		}
		flushed++
	}
	return flushed, firstErr
}

func (s *Store) findContentLocked(content string) int {
	return slices.IndexFunc(s.records, func(m model.Memory) bool {
		return strings.EqualFold(m.Content, content)
	})
}

// restoreLocked inserts m by creation time. It reports false when m would
// be evicted straight away.
func (s *Store) restoreLocked(ctx context.Context, m model.Memory) bool {
	pos := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].CreatedAt.After(m.CreatedAt)
	})
	if pos >= s.limit {
		return false
	}
	s.records = slices.Insert(s.records, pos, clone(m))
	s.evictLocked(ctx)
	return true
}

func (s *Store) evictLocked(ctx context.Context) {
	for len(s.records) > s.limit {
		evicted := s.records[len(s.records)-1]
		s.records = s.records[:len(s.records)-1]
		s.backup.Remove(evicted.ID)

		logger := logging.From(ctx)
		if err := s.backend.Delete(ctx, evicted.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Warn("failed to delete evicted memory", "id", evicted.ID, "error", err)
			continue
		}
		logger.Debug("evicted memory", "id", evicted.ID)
	}
}

func (s *Store) persistLocked(ctx context.Context, m model.Memory) error {
	if _, err := s.backend.Create(ctx, ToEntry(s.ns, m)); err != nil {
		pe := &PersistenceError{Op: "create", ID: m.ID, Err: err}
		logger := logging.From(ctx)
		logger.Warn("failed to persist memory, kept in local backup", "id", m.ID, "error", err)
		if berr := s.backup.Push(m); berr != nil {
			logger.Error("failed to write memory backup", "id", m.ID, "error", berr)
		}
		s.notifier.Notify(ctx, "Could not store memory, kept a local backup: "+m.Content, model.NoticeError)
		return pe
	}
	return nil
}

func clone(m model.Memory) model.Memory {
	m.Keywords = slices.Clone(m.Keywords)
	if m.LastUsed != nil {
		t := *m.LastUsed
		m.LastUsed = &t
	}
	return m
}
