package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/config"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	gt.NoError(t, err)
	gt.Equal(t, s.Frequency, 5)
	gt.Equal(t, s.MemoryLimit, 20)
	gt.Equal(t, s.ImportanceThreshold, 0.7)
	gt.Equal(t, s.Namespace, "AutoMemory")
	gt.Equal(t, s.Store.Backend, config.BackendSQLite)
	gt.Equal(t, s.Generator.Timeout, 60*time.Second)
}

func TestLoadMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(`
frequency: 3
memory_limit: 2
stop_words: [the, and]
generator:
  provider: openai
  model: gpt-4o-mini
  timeout: 5s
`), 0o600))

	s, err := config.Load(path)
	gt.NoError(t, err)
	gt.Equal(t, s.Frequency, 3)
	gt.Equal(t, s.MemoryLimit, 2)
	gt.Equal(t, s.Namespace, "AutoMemory")
	gt.Equal(t, s.Generator.Provider, "openai")
	gt.Equal(t, s.Generator.Timeout, 5*time.Second)
	gt.True(t, s.StopWordSet().Contains("the"))
	gt.False(t, s.StopWordSet().Contains("และ"))
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	gt.NoError(t, os.WriteFile(path, []byte("frequency: 0\n"), 0o600))

	_, err := config.Load(path)
	gt.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := config.Default()
	gt.NoError(t, s.Set("memory_limit", "7"))
	gt.NoError(t, s.Set("generator.model", "llama3.2"))
	gt.NoError(t, s.Save(path))

	loaded, err := config.Load(path)
	gt.NoError(t, err)
	gt.Equal(t, loaded.MemoryLimit, 7)
	gt.Equal(t, loaded.Generator.Model, "llama3.2")
}

func TestSet(t *testing.T) {
	s := config.Default()

	gt.Error(t, s.Set("frequency", "abc"))
	gt.Error(t, s.Set("frequency", "0"))
	gt.Error(t, s.Set("unknown", "1"))
	gt.Error(t, s.Set("store.backend", "redis"))

	s = config.Default()
	gt.NoError(t, s.Set("stop_words", "foo, bar,,"))
	gt.Equal(t, s.StopWords, []string{"foo", "bar"})
	gt.NoError(t, s.Set("generator.timeout", "90s"))
	gt.Equal(t, s.Generator.Timeout, 90*time.Second)
}

func TestPaths(t *testing.T) {
	t.Setenv(config.EnvConfig, "/tmp/x.yaml")
	gt.Equal(t, config.Path("flag.yaml"), "flag.yaml")
	gt.Equal(t, config.Path(""), "/tmp/x.yaml")

	t.Setenv(config.EnvDB, "/tmp/m.db")
	s := config.Default()
	gt.Equal(t, s.DBPath(), "/tmp/m.db")
	s.Store.Path = "/data/x.db"
	gt.Equal(t, s.DBPath(), "/data/x.db")
}

func TestValidateFirestore(t *testing.T) {
	s := config.Default()
	s.Store.Backend = config.BackendFirestore
	gt.Error(t, s.Validate())
	s.Store.FirestoreProject = "proj"
	gt.NoError(t, s.Validate())
}
