package cli

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/model"
)

func TestParseTurn(t *testing.T) {
	testCases := map[string]struct {
		line string
		want model.Turn
		ok   bool
	}{
		"speaker":      {line: "Alice: I love tea", want: model.Turn{Speaker: "Alice", Text: "I love tea"}, ok: true},
		"no speaker":   {line: "just talking", want: model.Turn{Speaker: "User", Text: "just talking"}, ok: true},
		"spaced colon": {line: "note this: tea", want: model.Turn{Speaker: "User", Text: "note this: tea"}, ok: true},
		"empty text":   {line: "Alice:", want: model.Turn{Speaker: "User", Text: "Alice:"}, ok: true},
		"blank":        {line: "   ", ok: false},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := parseTurn(tc.line, "User")
			gt.Equal(t, ok, tc.ok)
			gt.Equal(t, got, tc.want)
		})
	}
}

func TestReadTranscript(t *testing.T) {
	turns, err := readTranscript(strings.NewReader("User: hi\n\nAlice: hello\nhow are you\n"), "Narrator")
	gt.NoError(t, err)
	gt.A(t, turns).Length(3)
	gt.Equal(t, turns[1].Speaker, "Alice")
	gt.Equal(t, turns[2].Speaker, "Narrator")
}

func TestReadTranscriptLongLine(t *testing.T) {
	long := strings.Repeat("word ", 30000)
	turns, err := readTranscript(strings.NewReader("Alice: "+long+"\n"), "User")
	gt.NoError(t, err)
	gt.A(t, turns).Length(1)
	gt.Equal(t, turns[0].Text, strings.TrimSpace(long))
	gt.True(t, len(long) > 64*1024 && len(long) < maxLineSize)
}
