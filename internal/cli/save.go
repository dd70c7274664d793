package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "save [content]",
		Short: "Save a memory manually",
		Long:  "Save a memory. Keywords are extracted from the content unless given with -k.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSave,
	}

	cmd.Flags().String("character", "", "Character the memory belongs to (default: settings character)")
	cmd.Flags().StringP("keywords", "k", "", "Keywords (comma-separated)")

	RootCmd.AddCommand(cmd)
}

func runSave(cmd *cobra.Command, args []string) {
	character, _ := cmd.Flags().GetString("character")
	kwStr, _ := cmd.Flags().GetString("keywords")
	content := strings.Join(args, " ")

	s := loadSettings()
	if character == "" {
		character = s.Character
	}

	var keywords []string
	if kwStr != "" {
		keywords = strings.Split(kwStr, ",")
	} else {
		keywords = keyword.Extract(content, s.StopWordSet())
	}

	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	m, err := mem.Save(cmd.Context(), content, keywords, character)
	switch {
	case errors.Is(err, memory.ErrDuplicate):
		fmt.Println(`{"ok":false,"duplicate":true}`)
		return
	case memory.IsPersistence(err):
		printJSON(map[string]any{"ok": false, "backed_up": true, "memory": m})
		return
	case err != nil:
		exitErr("save", err)
	}
	printJSON(m)
}
