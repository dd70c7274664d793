// Package summarize turns recent chat history into memories.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rcliao/auto-memory/internal/chat"
	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/memory"
	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/notify"
)

const (
	DefaultFrequency    = 5
	DefaultHistoryTurns = 10
	DefaultMinTurns     = 3
	DefaultSentinel     = "No important information"
)

// Saver is the memory collection new facts are written to.
type Saver interface {
	Save(ctx context.Context, content string, keywords []string, character string) (*model.Memory, error)
}

// GenerationError reports a failed generator call. The pass is aborted.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generate summary: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Result counts the outcome of one pass. Records kept only in memory after
// a persistence failure are counted in Failed.
type Result struct {
	Candidates int            `json:"candidates"`
	Saved      []model.Memory `json:"saved"`
	Duplicates int            `json:"duplicates"`
	Failed     int            `json:"failed"`
	Skipped    bool           `json:"skipped,omitempty"`
}

// Trigger counts chat messages and runs a summarization pass every
// frequency messages.
type Trigger struct {
	mu    sync.Mutex
	count int

	frequency    int
	historyTurns int
	minTurns     int
	sentinel     string
	character    string
	stop         keyword.StopWords

	history  chat.Reader
	gen      generator.Generator
	store    Saver
	notifier notify.Sink

	group singleflight.Group
}

type Option func(*Trigger)

func WithFrequency(n int) Option {
	return func(t *Trigger) {
		if n > 0 {
			t.frequency = n
		}
	}
}

// WithHistoryTurns sets how many recent turns are summarized.
func WithHistoryTurns(n int) Option {
	return func(t *Trigger) {
		if n > 0 {
			t.historyTurns = n
		}
	}
}

// WithMinTurns sets the number of turns below which a pass does nothing.
func WithMinTurns(n int) Option {
	return func(t *Trigger) {
		if n >= 0 {
			t.minTurns = n
		}
	}
}

func WithSentinel(s string) Option {
	return func(t *Trigger) {
		if s = strings.TrimSpace(s); s != "" {
			t.sentinel = s
		}
	}
}

func WithCharacter(name string) Option {
	return func(t *Trigger) { t.character = name }
}

func WithStopWords(stop keyword.StopWords) Option {
	return func(t *Trigger) {
		if stop != nil {
			t.stop = stop
		}
	}
}

func WithNotifier(n notify.Sink) Option {
	return func(t *Trigger) {
		if n != nil {
			t.notifier = n
		}
	}
}

func New(history chat.Reader, gen generator.Generator, store Saver, opts ...Option) *Trigger {
	t := &Trigger{
		frequency:    DefaultFrequency,
		historyTurns: DefaultHistoryTurns,
		minTurns:     DefaultMinTurns,
		sentinel:     DefaultSentinel,
		stop:         keyword.DefaultStopWords(),
		history:      history,
		gen:          gen,
		store:        store,
		notifier:     notify.Discard{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Count returns the number of messages observed since the last pass.
func (t *Trigger) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Observe records one chat message. When the count reaches the frequency
// it is reset and a pass runs; triggered reports whether that happened.
func (t *Trigger) Observe(ctx context.Context) (bool, error) {
	t.mu.Lock()
	t.count++
	fire := t.count >= t.frequency
	if fire {
		t.count = 0
	}
	t.mu.Unlock()

	if !fire {
		return false, nil
	}
	_, err := t.Summarize(ctx)
	return true, err
}

// Summarize runs one pass. A caller arriving while a pass is in flight
// waits for it and shares its result.
func (t *Trigger) Summarize(ctx context.Context) (Result, error) {
	v, err, shared := t.group.Do("summarize", func() (any, error) {
		return t.run(ctx)
	})
	if shared {
		logging.From(ctx).Debug("joined running summarization")
	}
	res, _ := v.(Result)
	return res, err
}

func (t *Trigger) run(ctx context.Context) (Result, error) {
	logger := logging.From(ctx)

	turns := t.history.Recent(t.historyTurns)
	if len(turns) < t.minTurns {
		logger.Debug("not enough history to summarize", "turns", len(turns), "min", t.minTurns)
		return Result{Skipped: true}, nil
	}

	resp, err := t.gen.Generate(ctx, BuildPrompt(turns, t.sentinel))
	if err != nil {
		gerr := &GenerationError{Err: goerr.Wrap(err, "generator call failed", goerr.V("turns", len(turns)))}
		logger.Error("summarization failed", "error", gerr.Err)
		t.notifier.Notify(ctx, "Memory summarization failed", model.NoticeError)
		return Result{}, gerr
	}

	candidates := ParseCandidates(resp, t.sentinel)
	res := Result{Candidates: len(candidates)}
	for _, c := range candidates {
		m, err := t.store.Save(ctx, c, keyword.Extract(c, t.stop), t.character)
		switch {
		case err == nil:
			res.Saved = append(res.Saved, *m)
		case errors.Is(err, memory.ErrDuplicate):
			res.Duplicates++
		case memory.IsPersistence(err):
			res.Failed++
		default:
			res.Failed++
			logger.Warn("failed to save memory", "content", c, "error", err)
		}
	}

	logger.Info("summarization done",
		"candidates", res.Candidates,
		"saved", len(res.Saved),
		"duplicates", res.Duplicates,
		"failed", res.Failed,
	)
	return res, nil
}

// BuildPrompt renders turns into the summarization instruction.
func BuildPrompt(turns []model.Turn, sentinel string) string {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	var sb strings.Builder
	sb.WriteString("Summarize the following conversation into short, important facts worth remembering ")
	sb.WriteString("about the characters, their preferences, relationships and events.\n")
	sb.WriteString("Write one fact per line with no numbering or commentary.\n")
	fmt.Fprintf(&sb, "If nothing is worth remembering, reply exactly: %s\n\n", sentinel)
	sb.WriteString("Conversation:\n")
	for _, turn := range turns {
		speaker := strings.TrimSpace(turn.Speaker)
		if speaker == "" {
			speaker = "Unknown"
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, strings.TrimSpace(turn.Text))
	}
	return sb.String()
}

// ParseCandidates splits a generator response into candidate facts. A
// response equal to the sentinel yields none, as do lines containing it.
func ParseCandidates(resp, sentinel string) []string {
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return nil
	}
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	lower := strings.ToLower(sentinel)
	if strings.EqualFold(strings.TrimRight(resp, ".!"), sentinel) {
		return nil
	}

	var out []string
	for _, line := range strings.Split(resp, "\n") {
		line = stripMarker(strings.TrimSpace(line))
		if line == "" || strings.Contains(strings.ToLower(line), lower) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func stripMarker(line string) string {
	for _, m := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(line[len(m):])
		}
	}

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && unicode.IsSpace(rune(line[i+1])) {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// IsGeneration reports whether err carries a *GenerationError.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
