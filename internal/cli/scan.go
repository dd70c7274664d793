package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/inject"
	"github.com/rcliao/auto-memory/internal/relevance"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [message]",
		Short: "Show the memories relevant to a message",
		Long:  "Scan a message against stored memory keywords, mark the matches as used and print them.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runScan,
	}

	cmd.Flags().Bool("context", false, "Print the injected context block instead of JSON")

	RootCmd.AddCommand(cmd)
}

func runScan(cmd *cobra.Command, args []string) {
	asContext, _ := cmd.Flags().GetBool("context")
	message := strings.Join(args, " ")

	s := loadSettings()
	mem, backend := openMemory(cmd.Context(), s)
	defer backend.Close()

	packer := inject.NewPacker(s.InjectBudget, nil)
	matched := relevance.NewScanner(s.StopWordSet()).Apply(cmd.Context(), message, mem, packer)

	if asContext {
		if block := packer.Take(); block != nil {
			fmt.Fprintln(os.Stdout, block.String())
		}
		return
	}
	if len(matched) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(matched)
}
