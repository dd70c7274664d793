// Package chat keeps the recent chat turns read by summarization.
package chat

import (
	"slices"
	"sync"

	"github.com/rcliao/auto-memory/internal/model"
)

// DefaultWindow is the number of turns History retains by default.
const DefaultWindow = 50

// Reader returns the most recent turns, oldest first.
type Reader interface {
	Recent(n int) []model.Turn
}

// History is a sliding window of chat turns.
type History struct {
	mu    sync.Mutex
	max   int
	turns []model.Turn
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultWindow
	}
	return &History{max: max}
}

// Add appends a turn, dropping the oldest beyond the window.
func (h *History) Add(t model.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, t)
	if over := len(h.turns) - h.max; over > 0 {
		h.turns = slices.Delete(h.turns, 0, over)
	}
}

// Recent returns up to n of the newest turns, oldest first.
func (h *History) Recent(n int) []model.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > len(h.turns) {
		n = len(h.turns)
	}
	return slices.Clone(h.turns[len(h.turns)-n:])
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
