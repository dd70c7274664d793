package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as JSON",
		Long:  "Export stored entries as a JSON array. Defaults to the settings namespace; --all exports every namespace.",
		Run:   runExport,
	}

	cmd.Flags().StringP("ns", "n", "", "Namespace (default: settings namespace)")
	cmd.Flags().Bool("all", false, "Export every namespace (sqlite only)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	ns, _ := cmd.Flags().GetString("ns")
	all, _ := cmd.Flags().GetBool("all")

	s := loadSettings()
	if ns == "" {
		ns = s.Namespace
	}

	ctx := cmd.Context()
	backend, err := openBackend(ctx, s)
	if err != nil {
		exitErr("open store", err)
	}
	defer backend.Close()

	if db, ok := backend.(*store.SQLiteStore); ok {
		if all {
			ns = ""
		}
		entries, err := db.ExportAll(ctx, ns)
		if err != nil {
			exitErr("export", err)
		}
		printJSON(entries)
		return
	}

	entries, err := backend.ListByNamespace(ctx, ns)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(entries)
}
