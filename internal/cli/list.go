package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default: all)")
	cmd.Flags().Bool("content-only", false, "Only output memory contents")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	contentOnly, _ := cmd.Flags().GetBool("content-only")

	s := loadSettings()
	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	records := mem.Records()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	if contentOnly {
		for _, m := range records {
			fmt.Println(m.Content)
		}
		return
	}
	printJSON(records)
}
