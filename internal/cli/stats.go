package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s := loadSettings()
	db := openSQLite(s)
	defer db.Close()

	stats, err := db.Stats(cmd.Context(), s.DBPath())
	if err != nil {
		exitErr("stats", err)
	}
	printJSON(stats)
}
