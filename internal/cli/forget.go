package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Delete a single memory",
		Args:  cobra.ExactArgs(1),
		Run:   runForget,
	}

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	id := args[0]

	s := loadSettings()
	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	if err := mem.Forget(cmd.Context(), id); err != nil {
		exitErr("forget", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", id)
}
