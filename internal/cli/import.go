package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entries from JSON",
		Long:  "Import entries from JSON on stdin. Expects the format produced by export.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse json", err)
	}

	s := loadSettings()
	ctx := cmd.Context()
	backend, err := openBackend(ctx, s)
	if err != nil {
		exitErr("open store", err)
	}
	defer backend.Close()

	imported := 0
	if db, ok := backend.(*store.SQLiteStore); ok {
		imported, err = db.Import(ctx, entries)
	} else {
		for _, e := range entries {
			if _, err = backend.Create(ctx, e); err != nil {
				break
			}
			imported++
		}
	}
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
