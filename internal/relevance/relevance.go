// Package relevance finds stored memories related to a message.
package relevance

import (
	"context"
	"strings"
	"time"

	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/model"
)

// Matches reports whether any keyword of a and any keyword of b contain one
// another, ignoring case. Partial tokens match on purpose.
func Matches(a, b []string) bool {
	for _, x := range a {
		x = strings.ToLower(x)
		if x == "" {
			continue
		}
		for _, y := range b {
			y = strings.ToLower(y)
			if y == "" {
				continue
			}
			if strings.Contains(x, y) || strings.Contains(y, x) {
				return true
			}
		}
	}
	return false
}

// Scanner matches messages against memory keywords.
type Scanner struct {
	stop keyword.StopWords
}

func NewScanner(stop keyword.StopWords) *Scanner {
	if stop == nil {
		stop = keyword.DefaultStopWords()
	}
	return &Scanner{stop: stop}
}

// Scan returns the records relevant to message, in record order.
func (s *Scanner) Scan(message string, records []model.Memory) []model.Memory {
	keywords := keyword.Extract(message, s.stop)
	if len(keywords) == 0 {
		return nil
	}

	var matched []model.Memory
	for _, r := range records {
		if Matches(r.Keywords, keywords) {
			matched = append(matched, r)
		}
	}
	return matched
}

// Source is the memory collection a scan reads from.
type Source interface {
	Records() []model.Memory
	Touch(ctx context.Context, ids []string, at time.Time)
}

// Injector receives the memories relevant to the current message.
type Injector interface {
	Inject(ctx context.Context, memories []model.Memory)
}

// Apply scans message against src, marks the matches as used and hands
// them to inj. It returns the matches.
func (s *Scanner) Apply(ctx context.Context, message string, src Source, inj Injector) []model.Memory {
	matched := s.Scan(message, src.Records())
	if len(matched) == 0 {
		return nil
	}

	now := time.Now()
	ids := make([]string, len(matched))
	for i := range matched {
		ids[i] = matched[i].ID
		used := now
		matched[i].LastUsed = &used
	}
	src.Touch(ctx, ids, now)

	logging.From(ctx).Debug("relevant memories found", "count", len(matched))
	if inj != nil {
		inj.Inject(ctx, matched)
	}
	return matched
}
