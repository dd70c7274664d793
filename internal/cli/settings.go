package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Run:   runSettingsShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change one setting, e.g. memory_limit 30 or generator.model llama3.2",
		Args:  cobra.ExactArgs(2),
		Run:   runSettingsSet,
	})

	RootCmd.AddCommand(cmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) {
	s := loadSettings()
	if s.Generator.APIKey != "" {
		s.Generator.APIKey = "****"
	}
	printJSON(s)
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	path := config.Path(configPath)
	s, err := config.Load(path)
	if err != nil {
		exitErr("load settings", err)
	}
	if err := s.Set(args[0], args[1]); err != nil {
		exitErr("set", err)
	}
	if err := s.Save(path); err != nil {
		exitErr("save settings", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"key":%q,"path":%q}`+"\n", args[0], path)
}
