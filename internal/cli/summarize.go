package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/chat"
	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/notify"
	"github.com/rcliao/auto-memory/internal/summarize"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a transcript into memories",
		Long:  `Summarize a transcript (stdin or --file, one "Speaker: text" turn per line) into memories.`,
		Run:   runSummarize,
	}

	cmd.Flags().String("file", "", "Transcript file (default: stdin)")
	cmd.Flags().String("character", "", "Character the memories belong to (default: settings character)")

	RootCmd.AddCommand(cmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	character, _ := cmd.Flags().GetString("character")

	var r io.Reader = os.Stdin
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			exitErr("open transcript", err)
		}
		defer f.Close()
		r = f
	}

	turns, err := readTranscript(r, "User")
	if err != nil {
		exitErr("read transcript", err)
	}

	s := loadSettings()
	if character == "" {
		character = s.Character
	}

	ctx := cmd.Context()
	gen, err := generator.New(ctx, s.Generator)
	if err != nil {
		exitErr("create generator", err)
	}

	mem, backend := openMemory(ctx, s)
	defer backend.Close()

	history := chat.NewHistory(s.HistoryTurns)
	for _, t := range turns {
		history.Add(t)
	}

	trigger := summarize.New(history, generator.WithTimeout(gen, s.Generator.Timeout), mem,
		summarize.WithHistoryTurns(s.HistoryTurns),
		summarize.WithMinTurns(s.MinTurns),
		summarize.WithSentinel(s.Sentinel),
		summarize.WithCharacter(character),
		summarize.WithStopWords(s.StopWordSet()),
		summarize.WithNotifier(notify.NewWriter(os.Stderr)),
	)

	res, err := trigger.Summarize(ctx)
	if err != nil {
		exitErr("summarize", err)
	}
	printJSON(res)
}
