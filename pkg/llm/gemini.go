package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// GeminiEndpoint is the Generative Language API base URL.
const GeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Generative Language REST API with an API key.
type GeminiProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini provider. An empty endpoint uses GeminiEndpoint.
func NewGeminiProvider(apiKey, endpoint string, timeout time.Duration) (p *GeminiProvider) {
	if endpoint == "" {
		endpoint = GeminiEndpoint
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	p = &GeminiProvider{
		apiKey:   apiKey,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	return p
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (text string, err error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: req.Temperature},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(body)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return text, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.endpoint, req.Model)

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", p.apiKey)

	var resp *http.Response
	resp, err = p.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return text, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return text, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("gemini request failed with status %d: %s", resp.StatusCode, string(respBody))
		return text, err
	}

	if reason := gjson.GetBytes(respBody, "promptFeedback.blockReason"); reason.Exists() {
		err = errors.Errorf("gemini blocked the prompt: %s", reason.String())
		return text, err
	}

	var sb strings.Builder
	for _, part := range gjson.GetBytes(respBody, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	text = sb.String()

	return text, err
}
