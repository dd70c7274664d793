package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/auto-memory/internal/model"
)

// maxLineSize bounds a single chat line read from stdin.
const maxLineSize = 1024 * 1024

// parseTurn reads "Speaker: text". Lines without a speaker prefix are
// attributed to fallback.
func parseTurn(line, fallback string) (model.Turn, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Turn{}, false
	}
	if i := strings.Index(line, ":"); i > 0 && i <= 40 && !strings.ContainsAny(line[:i], " \t") {
		if text := strings.TrimSpace(line[i+1:]); text != "" {
			return model.Turn{Speaker: line[:i], Text: text}, true
		}
	}
	return model.Turn{Speaker: fallback, Text: line}, true
}

// readTranscript parses one turn per non-empty line.
func readTranscript(r io.Reader, fallback string) ([]model.Turn, error) {
	var turns []model.Turn
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if t, ok := parseTurn(sc.Text(), fallback); ok {
			turns = append(turns, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, goerr.Wrap(err, "read transcript")
	}
	return turns, nil
}
