package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect or flush memories that could not be stored",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List backed-up memories",
		Run:   runBackupList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Retry storing backed-up memories",
		Run:   runBackupFlush,
	})

	RootCmd.AddCommand(cmd)
}

func runBackupList(cmd *cobra.Command, args []string) {
	s := loadSettings()
	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	items := mem.Backup().List()
	if len(items) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(items)
}

func runBackupFlush(cmd *cobra.Command, args []string) {
	s := loadSettings()
	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	n, err := mem.FlushBackup(cmd.Context())
	if err != nil {
		exitErr("flush backup", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"flushed":%d,"remaining":%d}`+"\n", n, mem.Backup().Len())
}
