package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

// AnthropicMaxTokens caps the length of a single reply.
const AnthropicMaxTokens = 4096

// AnthropicProvider calls the Messages API through the official SDK.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates an Anthropic provider. baseURL may be empty.
func NewAnthropicProvider(apiKey, baseURL string) (p *AnthropicProvider) {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	p = &AnthropicProvider{client: anthropic.NewClient(opts...)}
	return p
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (text string, err error) {
	var msg *anthropic.Message
	msg, err = p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   AnthropicMaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		err = errors.Wrap(err, "anthropic request failed")
		return text, err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text = sb.String()

	return text, err
}
