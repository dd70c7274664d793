// Package notify delivers user-visible notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/model"
)

// Sink receives user-visible notifications.
type Sink interface {
	Notify(ctx context.Context, msg string, kind model.NoticeKind)
}

// Log writes notifications to the context logger.
type Log struct{}

func (Log) Notify(ctx context.Context, msg string, kind model.NoticeKind) {
	logger := logging.From(ctx)
	if kind == model.NoticeError {
		logger.Warn(msg, "notice", string(kind))
		return
	}
	logger.Info(msg, "notice", string(kind))
}

// Writer prints notifications as single lines, e.g. to a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(_ context.Context, msg string, kind model.NoticeKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", kind, msg)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, string, model.NoticeKind) {}
