// Package generator wraps the language model backends used to summarize
// conversations into memories.
package generator

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	DefaultTimeout = 60 * time.Second
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config selects and configures a backend.
type Config struct {
	Provider string        `yaml:"provider" json:"provider"`
	Model    string        `yaml:"model" json:"model"`
	APIKey   string        `yaml:"api_key" json:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderOllama, ProviderGemini}
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case ProviderOllama, "":
		return NewOllama(cfg.BaseURL, cfg.Model)
	case ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	}
	return nil, goerr.New("unknown generator provider", goerr.V("provider", cfg.Provider))
}

// WithTimeout bounds every Generate call of g by d.
func WithTimeout(g Generator, d time.Duration) Generator {
	if d <= 0 {
		return g
	}
	return Func(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return g.Generate(ctx, prompt)
	})
}
