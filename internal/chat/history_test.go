package chat_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/chat"
	"github.com/rcliao/auto-memory/internal/model"
)

func TestHistoryWindow(t *testing.T) {
	h := chat.NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(model.Turn{Speaker: "user", Text: fmt.Sprint(i)})
	}

	gt.Equal(t, h.Len(), 3)
	got := h.Recent(10)
	gt.A(t, got).Length(3)
	gt.Equal(t, got[0].Text, "2")
	gt.Equal(t, got[2].Text, "4")

	got = h.Recent(2)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0].Text, "3")
}

func TestHistoryEmpty(t *testing.T) {
	h := chat.NewHistory(0)
	gt.A(t, h.Recent(10)).Length(0)
}
