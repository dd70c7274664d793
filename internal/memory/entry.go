package memory

import (
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/model"
)

const commentSep = " | "

// Comment renders the "label | timestamp" comment stored with an entry. The
// label is the character name, or the namespace when there is none.
func Comment(ns string, m model.Memory) string {
	label := m.Character
	if label == "" {
		label = ns
	}
	return label + commentSep + m.CreatedAt.UTC().Format(time.RFC3339Nano)
}

// ParseComment splits a "label | timestamp" comment. ok is false when the
// timestamp part is missing or unparsable.
func ParseComment(comment string) (label string, at time.Time, ok bool) {
	i := strings.LastIndex(comment, commentSep)
	if i < 0 {
		return strings.TrimSpace(comment), time.Time{}, false
	}
	label = strings.TrimSpace(comment[:i])
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(comment[i+len(commentSep):]))
	if err != nil {
		return label, time.Time{}, false
	}
	return label, at, true
}

// Belongs reports whether e is tagged with namespace ns. The canonical tag
// is Entry.Namespace; entries written by older versions carried the
// namespace in their comment or keywords instead.
func Belongs(e model.Entry, ns string) bool {
	if e.Namespace == ns {
		return true
	}
	if e.Namespace != "" {
		return false
	}
	return strings.Contains(e.Comment, ns) || slices.Contains(e.Keywords, ns)
}

// ToEntry converts m into a persistable entry of ns.
func ToEntry(ns string, m model.Memory) model.Entry {
	return model.Entry{
		ID:        m.ID,
		Namespace: ns,
		Comment:   Comment(ns, m),
		Keywords:  slices.Clone(m.Keywords),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// FromEntry converts a persisted entry of ns into a memory.
func FromEntry(ns string, e model.Entry) (model.Memory, error) {
	content := strings.TrimSpace(e.Content)
	if content == "" {
		return model.Memory{}, goerr.Wrap(ErrMalformedEntry, "entry has no content", goerr.V("id", e.ID))
	}

	m := model.Memory{
		ID:        e.ID,
		Content:   content,
		CreatedAt: e.CreatedAt,
		LastUsed:  e.LastAccessedAt,
	}

	label, at, ok := ParseComment(e.Comment)
	if ok {
		m.CreatedAt = at
		if label != ns {
			m.Character = label
		}
	}

	for _, kw := range e.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || kw == strings.ToLower(ns) {
			continue
		}
		m.Keywords = append(m.Keywords, kw)
	}
	return m, nil
}
