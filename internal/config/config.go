// Package config loads and saves the auto-memory settings file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/auto-memory/internal/generator"
	"github.com/rcliao/auto-memory/internal/inject"
	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/logging"
	"github.com/rcliao/auto-memory/internal/memory"
	"github.com/rcliao/auto-memory/internal/store"
	"github.com/rcliao/auto-memory/internal/summarize"
)

const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"

	EnvConfig = "AUTO_MEMORY_CONFIG"
	EnvDB     = "AUTO_MEMORY_DB"

	dirName = ".auto-memory"
)

// Settings is the full configuration of the pipeline.
type Settings struct {
	Frequency           int     `yaml:"frequency" json:"frequency"`
	MemoryLimit         int     `yaml:"memory_limit" json:"memory_limit"`
	ImportanceThreshold float64 `yaml:"importance_threshold" json:"importance_threshold"`

	Namespace    string   `yaml:"namespace" json:"namespace"`
	Character    string   `yaml:"character" json:"character"`
	HistoryTurns int      `yaml:"history_turns" json:"history_turns"`
	MinTurns     int      `yaml:"min_turns" json:"min_turns"`
	Sentinel     string   `yaml:"sentinel" json:"sentinel"`
	StopWords    []string `yaml:"stop_words" json:"stop_words"`
	LogLevel     string   `yaml:"log_level" json:"log_level"`
	InjectBudget int      `yaml:"inject_budget" json:"inject_budget"`

	Store      StoreConfig      `yaml:"store" json:"store"`
	Generator  generator.Config `yaml:"generator" json:"generator"`
	BackupPath string           `yaml:"backup_path" json:"backup_path"`
}

// StoreConfig selects the persistent record store.
type StoreConfig struct {
	Backend           string `yaml:"backend" json:"backend"`
	Path              string `yaml:"path" json:"path"`
	FirestoreProject  string `yaml:"firestore_project" json:"firestore_project"`
	FirestoreDatabase string `yaml:"firestore_database" json:"firestore_database"`
	Collection        string `yaml:"collection" json:"collection"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Frequency:           summarize.DefaultFrequency,
		MemoryLimit:         memory.DefaultLimit,
		ImportanceThreshold: 0.7,
		Namespace:           memory.DefaultNamespace,
		HistoryTurns:        summarize.DefaultHistoryTurns,
		MinTurns:            summarize.DefaultMinTurns,
		Sentinel:            summarize.DefaultSentinel,
		LogLevel:            "info",
		InjectBudget:        inject.DefaultBudget,
		Store: StoreConfig{
			Backend:           BackendSQLite,
			FirestoreDatabase: "(default)",
			Collection:        store.DefaultCollection,
		},
		Generator: generator.Config{
			Provider: generator.ProviderOllama,
			Timeout:  generator.DefaultTimeout,
		},
	}
}

// Dir returns the per-user settings directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

// Path resolves the settings file from flag, $AUTO_MEMORY_CONFIG, or the
// default location.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read settings", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, goerr.Wrap(err, "failed to parse settings", goerr.V("path", path))
	}
	if err := s.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid settings", goerr.V("path", path))
	}
	return s, nil
}

// Save writes s to path, creating the directory when needed.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(s)
	if err != nil {
		return goerr.Wrap(err, "failed to encode settings")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create settings directory", goerr.V("path", path))
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write settings", goerr.V("path", path))
	}
	return nil
}

func (s *Settings) Validate() error {
	if s.Frequency < 1 {
		return goerr.New("frequency must be at least 1", goerr.V("frequency", s.Frequency))
	}
	if s.MemoryLimit < 1 {
		return goerr.New("memory_limit must be at least 1", goerr.V("memory_limit", s.MemoryLimit))
	}
	if s.HistoryTurns < 1 {
		return goerr.New("history_turns must be at least 1", goerr.V("history_turns", s.HistoryTurns))
	}
	if s.MinTurns < 0 {
		return goerr.New("min_turns must not be negative", goerr.V("min_turns", s.MinTurns))
	}
	if strings.TrimSpace(s.Namespace) == "" {
		return goerr.New("namespace is required")
	}
	if _, ok := logging.ParseLevel(s.LogLevel); !ok {
		return goerr.New("unknown log level", goerr.V("log_level", s.LogLevel))
	}
	switch s.Store.Backend {
	case BackendSQLite:
	case BackendFirestore:
		if s.Store.FirestoreProject == "" {
			return goerr.New("store.firestore_project is required for the firestore backend")
		}
	default:
		return goerr.New("unknown store backend", goerr.V("backend", s.Store.Backend))
	}
	if !slices.Contains(generator.Providers(), s.Generator.Provider) {
		return goerr.New("unknown generator provider", goerr.V("provider", s.Generator.Provider))
	}
	return nil
}

// StopWordSet returns the configured stop words, or the built-in list when
// none are set.
func (s *Settings) StopWordSet() keyword.StopWords {
	if len(s.StopWords) == 0 {
		return keyword.DefaultStopWords()
	}
	return keyword.NewStopWords(s.StopWords...)
}

// DBPath resolves the SQLite database path.
func (s *Settings) DBPath() string {
	if s.Store.Path != "" {
		return s.Store.Path
	}
	if env := os.Getenv(EnvDB); env != "" {
		return env
	}
	return filepath.Join(Dir(), "memory.db")
}

// BackupFile resolves the local backup path.
func (s *Settings) BackupFile() string {
	if s.BackupPath != "" {
		return s.BackupPath
	}
	return filepath.Join(Dir(), "backup.json")
}

// Set assigns a single setting by its yaml key, e.g. "memory_limit" or
// "generator.model".
func (s *Settings) Set(key, value string) error {
	intVal := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, goerr.Wrap(err, "expected an integer", goerr.V("key", key), goerr.V("value", value))
		}
		return n, nil
	}

	var err error
	switch key {
	case "frequency":
		s.Frequency, err = intVal()
	case "memory_limit":
		s.MemoryLimit, err = intVal()
	case "importance_threshold":
		s.ImportanceThreshold, err = strconv.ParseFloat(value, 64)
	case "namespace":
		s.Namespace = value
	case "character":
		s.Character = value
	case "history_turns":
		s.HistoryTurns, err = intVal()
	case "min_turns":
		s.MinTurns, err = intVal()
	case "sentinel":
		s.Sentinel = value
	case "stop_words":
		s.StopWords = nil
		for _, w := range strings.Split(value, ",") {
			if w = strings.TrimSpace(w); w != "" {
				s.StopWords = append(s.StopWords, w)
			}
		}
	case "log_level":
		s.LogLevel = value
	case "inject_budget":
		s.InjectBudget, err = intVal()
	case "backup_path":
		s.BackupPath = value
	case "store.backend":
		s.Store.Backend = value
	case "store.path":
		s.Store.Path = value
	case "store.firestore_project":
		s.Store.FirestoreProject = value
	case "store.firestore_database":
		s.Store.FirestoreDatabase = value
	case "store.collection":
		s.Store.Collection = value
	case "generator.provider":
		s.Generator.Provider = value
	case "generator.model":
		s.Generator.Model = value
	case "generator.api_key":
		s.Generator.APIKey = value
	case "generator.base_url":
		s.Generator.BaseURL = value
	case "generator.timeout":
		s.Generator.Timeout, err = time.ParseDuration(value)
	default:
		return goerr.New("unknown setting", goerr.V("key", key))
	}
	if err != nil {
		return goerr.Wrap(err, "invalid setting value", goerr.V("key", key))
	}
	return s.Validate()
}
