// Package cli implements the auto-memory CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/rcliao/auto-memory/internal/config"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/memory"
	"github.com/rcliao/auto-memory/internal/notify"
	"github.com/rcliao/auto-memory/internal/store"
)

var (
	dbPath     string
	configPath string
	logLevel   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "auto-memory",
	Short: "Automatic long-term memory for chat conversations",
	Long: "Summarizes conversations into short memories, stores them under a namespace " +
		"and recalls the relevant ones by keyword.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if level == "" {
			if s, err := config.Load(config.Path(configPath)); err == nil {
				level = s.LogLevel
			}
		}
		logger := logging.New(level, os.Stderr)
		logging.SetDefault(logger)
		cmd.SetContext(logging.With(cmd.Context(), logger))
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $AUTO_MEMORY_DB or ~/.auto-memory/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file (default: $AUTO_MEMORY_CONFIG or ~/.auto-memory/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func loadSettings() *config.Settings {
	s, err := config.Load(config.Path(configPath))
	if err != nil {
		exitErr("load settings", err)
	}
	if dbPath != "" {
		s.Store.Path = dbPath
	}
	return s
}

// openBackend opens the configured record store.
func openBackend(ctx context.Context, s *config.Settings) (store.RecordStore, error) {
	switch s.Store.Backend {
	case config.BackendFirestore:
		return store.NewFirestoreStore(ctx, s.Store.FirestoreProject, s.Store.FirestoreDatabase, s.Store.Collection)
	default:
		return store.NewSQLiteStore(s.DBPath())
	}
}

// openSQLite opens the SQLite store for commands that query it directly.
func openSQLite(s *config.Settings) *store.SQLiteStore {
	if s.Store.Backend != config.BackendSQLite {
		exitErr("open store", goerr.New("command needs the sqlite backend", goerr.V("backend", s.Store.Backend)))
	}
	db, err := store.NewSQLiteStore(s.DBPath())
	if err != nil {
		exitErr("open store", err)
	}
	return db
}

// openMemory loads the namespace's memories into a Store.
func openMemory(ctx context.Context, s *config.Settings) (*memory.Store, store.RecordStore) {
	backend, err := openBackend(ctx, s)
	if err != nil {
		exitErr("open store", err)
	}
	backup, err := memory.NewBackup(s.BackupFile(), memory.DefaultBackupLimit)
	if err != nil {
		backend.Close()
		exitErr("open backup", err)
	}

	mem := memory.New(backend,
		memory.WithNamespace(s.Namespace),
		memory.WithLimit(s.MemoryLimit),
		memory.WithStopWords(s.StopWordSet()),
		memory.WithBackup(backup),
		memory.WithNotifier(notify.NewWriter(os.Stderr)),
	)
	if _, err := mem.Load(ctx); err != nil {
		backend.Close()
		exitErr("load memories", err)
	}
	return mem, backend
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
