package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/engine"
	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/inject"
	"github.com/rcliao/auto-memory/internal/notify"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Feed chat messages through the memory pipeline",
		Long: `Read chat messages from stdin, one per line ("Speaker: text" or plain text). ` +
			"Every message counts toward summarization and relevant memories are printed as a context block.",
		Run: runChat,
	}

	cmd.Flags().String("speaker", "User", "Speaker for lines without a prefix")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	speaker, _ := cmd.Flags().GetString("speaker")

	s := loadSettings()
	ctx := cmd.Context()

	gen, err := generator.New(ctx, s.Generator)
	if err != nil {
		exitErr("create generator", err)
	}
	backend, err := openBackend(ctx, s)
	if err != nil {
		exitErr("open store", err)
	}
	defer backend.Close()

	eng, err := engine.New(ctx, s, backend, gen, notify.NewWriter(os.Stderr), inject.NewPacker(s.InjectBudget, os.Stdout))
	if err != nil {
		exitErr("start engine", err)
	}

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		turn, ok := parseTurn(sc.Text(), speaker)
		if !ok {
			continue
		}
		out, err := eng.HandleMessage(ctx, turn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if out.Summarized {
			fmt.Fprintf(os.Stderr, "[memories: %d]\n", eng.Store.Len())
		}
	}
	if err := sc.Err(); err != nil {
		exitErr("read stdin", err)
	}
}
