package memory

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/model"
)

func TestCommentRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 123000000, time.UTC)

	label, got, ok := ParseComment(Comment("AutoMemory", model.Memory{Character: "Alice", CreatedAt: at}))
	gt.True(t, ok)
	gt.Equal(t, label, "Alice")
	gt.True(t, got.Equal(at))

	label, _, ok = ParseComment(Comment("AutoMemory", model.Memory{CreatedAt: at}))
	gt.True(t, ok)
	gt.Equal(t, label, "AutoMemory")
}

func TestParseCommentInvalid(t *testing.T) {
	label, _, ok := ParseComment("AutoMemory-1234")
	gt.False(t, ok)
	gt.Equal(t, label, "AutoMemory-1234")

	_, _, ok = ParseComment("Alice | yesterday")
	gt.False(t, ok)
}

func TestBelongs(t *testing.T) {
	gt.True(t, Belongs(model.Entry{Namespace: "AutoMemory"}, "AutoMemory"))
	gt.False(t, Belongs(model.Entry{Namespace: "Other", Comment: "AutoMemory | x"}, "AutoMemory"))
	gt.True(t, Belongs(model.Entry{Comment: "AutoMemory-42"}, "AutoMemory"))
	gt.True(t, Belongs(model.Entry{Keywords: []string{"AutoMemory"}}, "AutoMemory"))
	gt.False(t, Belongs(model.Entry{Comment: "notes"}, "AutoMemory"))
}

func TestFromEntryMalformed(t *testing.T) {
	_, err := FromEntry("AutoMemory", model.Entry{ID: "x", Content: ""})
	gt.Error(t, err)
}
