package generator

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to an OpenAI compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" && baseURL == "" {
		return nil, goerr.New("openai api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (g *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "openai completion failed", goerr.V("model", g.model))
	}
	if len(resp.Choices) == 0 {
		return "", goerr.New("openai returned no choices", goerr.V("model", g.model))
	}
	return resp.Choices[0].Message.Content, nil
}
