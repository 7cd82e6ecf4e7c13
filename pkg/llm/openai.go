package llm

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider calls a chat completions endpoint. Any OpenAI compatible server works.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, baseURL string) (p *OpenAIProvider) {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	p = &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
	return p
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (text string, err error) {
	var resp openai.ChatCompletionResponse
	resp, err = p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: float32(req.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		err = errors.Wrap(err, "openai request failed")
		return text, err
	}

	if len(resp.Choices) == 0 {
		err = errors.New("no choices in openai response")
		return text, err
	}

	text = resp.Choices[0].Message.Content
	return text, err
}
