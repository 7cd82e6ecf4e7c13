package llm

import (
	"context"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// VertexProvider calls Gemini models hosted on Vertex AI.
type VertexProvider struct {
	client *genai.Client
}

// NewVertexProvider connects to Vertex AI. credentialsFile may be empty to use default credentials.
func NewVertexProvider(ctx context.Context, project, location, credentialsFile string) (p *VertexProvider, err error) {
	if project == "" {
		err = errors.New("vertex project is required")
		return p, err
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var client *genai.Client
	client, err = genai.NewClient(ctx, project, location, opts...)
	if err != nil {
		err = errors.Wrap(err, "failed to create vertex client")
		return p, err
	}

	p = &VertexProvider{client: client}
	return p, err
}

func (p *VertexProvider) Complete(ctx context.Context, req CompletionRequest) (text string, err error) {
	model := p.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))

	var resp *genai.GenerateContentResponse
	resp, err = model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		err = errors.Wrap(err, "vertex request failed")
		return text, err
	}

	text = vertexText(resp)
	return text, err
}

// vertexText joins the text parts of the first candidate that carries content.
func vertexText(resp *genai.GenerateContentResponse) (text string) {
	if resp == nil {
		return text
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	text = sb.String()
	return text
}

// Close releases the underlying gRPC connection.
func (p *VertexProvider) Close() (err error) {
	err = p.client.Close()
	return err
}
