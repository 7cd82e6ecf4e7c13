package llm

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTemperature is used when no temperature is configured.
	DefaultTemperature = 0.4
)

// Client pins a model and temperature on top of a Provider and hides its errors.
type Client struct {
	provider    Provider
	model       string
	temperature float64
	timeout     time.Duration
	logger      logrus.FieldLogger
}

// NewClient creates a client. Zero values fall back to the defaults.
func NewClient(provider Provider, model string, temperature float64, timeout time.Duration, logger logrus.FieldLogger) (client *Client) {
	if model == "" {
		model = DefaultModel
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client = &Client{
		provider:    provider,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() (model string) {
	model = c.model
	return model
}

// Submit sends prompt to the model and returns its text.
// Any provider failure is logged and reported as an empty string.
func (c *Client) Submit(ctx context.Context, prompt string) (text string) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		Model:       c.model,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.WithError(err).WithField("model", c.model).Warn("model call failed")
		text = ""
		return text
	}

	c.logger.WithFields(logrus.Fields{
		"model":    c.model,
		"duration": time.Since(start).Round(time.Millisecond),
		"chars":    len(text),
	}).Debug("model call complete")

	return text
}

// Close releases provider resources, if the provider holds any.
func (c *Client) Close() (err error) {
	if closer, ok := c.provider.(io.Closer); ok {
		err = closer.Close()
	}
	return err
}
