// Package inject assembles relevant memories into a context block placed
// ahead of the next generation prompt.
package inject

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/model"
)

const (
	// DefaultBudget is the maximum block size in characters.
	DefaultBudget = 2000
	// minExcerpt is the smallest remainder worth filling with an excerpt.
	minExcerpt = 100

	header = "[Relevant memories]"
)

// Injector receives the memories relevant to the current message.
type Injector interface {
	Inject(ctx context.Context, memories []model.Memory)
}

// Block is the assembled context.
type Block struct {
	Budget   int            `json:"budget"`
	Used     int            `json:"used"`
	Memories []PackedMemory `json:"memories"`
}

// PackedMemory is a memory as it appears in the block.
type PackedMemory struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Excerpt bool   `json:"excerpt,omitempty"`
}

// String renders the block as prompt text.
func (b *Block) String() string {
	if b == nil || len(b.Memories) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(header)
	for _, m := range b.Memories {
		sb.WriteString("\n- ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// Pack greedily fits memories, in order, into budget characters. The first
// memory that does not fit is cut to an excerpt when enough room is left.
func Pack(memories []model.Memory, budget int) *Block {
	if budget <= 0 {
		budget = DefaultBudget
	}

	b := &Block{Budget: budget, Memories: []PackedMemory{}}
	for _, m := range memories {
		n := utf8.RuneCountInString(m.Content)
		if b.Used+n <= budget {
			b.Memories = append(b.Memories, PackedMemory{ID: m.ID, Content: m.Content})
			b.Used += n
			continue
		}
		if remaining := budget - b.Used; remaining >= minExcerpt {
			excerpt := string([]rune(m.Content)[:remaining]) + "..."
			b.Memories = append(b.Memories, PackedMemory{ID: m.ID, Content: excerpt, Excerpt: true})
			b.Used += remaining
		}
		break
	}
	return b
}

// Packer is an injector that keeps the latest packed block and optionally
// echoes it to a writer.
type Packer struct {
	mu     sync.Mutex
	budget int
	out    io.Writer
	last   *Block
}

func NewPacker(budget int, out io.Writer) *Packer {
	return &Packer{budget: budget, out: out}
}

// Inject packs memories and stores the result as the pending context.
func (p *Packer) Inject(ctx context.Context, memories []model.Memory) {
	block := Pack(memories, p.budget)

	p.mu.Lock()
	p.last = block
	p.mu.Unlock()

	logging.From(ctx).Debug("memories injected", "count", len(block.Memories), "used", block.Used)
	if p.out != nil && len(block.Memories) > 0 {
		fmt.Fprintln(p.out, block.String())
	}
}

// Take returns the pending block and clears it.
func (p *Packer) Take() *Block {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.last
	p.last = nil
	return b
}
