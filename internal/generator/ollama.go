package generator

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama uses a local Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama connects to baseURL, falling back to $OLLAMA_HOST and then the
// default local address.
func NewOllama(baseURL, model string) (*Ollama, error) {
	if model == "" {
		model = "llama3.2"
	}
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid ollama url", goerr.V("url", baseURL))
	}
	return &Ollama{
		client: api.NewClient(uri, http.DefaultClient),
		model:  model,
	}, nil
}

func (g *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", goerr.Wrap(err, "ollama generate failed", goerr.V("model", g.model))
	}
	return sb.String(), nil
}
