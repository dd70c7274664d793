package cli

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every memory of the namespace",
		Run:   runClear,
	}

	cmd.Flags().Bool("yes", false, "Confirm deletion (irreversible)")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")

	s := loadSettings()
	if !yes {
		exitErr("clear", goerr.New("refusing to clear without --yes", goerr.V("ns", s.Namespace)))
	}

	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	if err := mem.ClearAll(cmd.Context()); err != nil {
		exitErr("clear", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"ns":%q}`+"\n", s.Namespace)
}
