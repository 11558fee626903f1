// Package llm talks to an OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/prompt"
	"gitlab.com/tozd/go/errors"
)

// DefaultBaseURL is the endpoint used when no override is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultTimeout bounds a single completion round-trip.
const DefaultTimeout = 5 * time.Minute

// Client produces a completion for a conversation. The retry controller is
// tested against this interface with deterministic fakes.
type Client interface {
	// Complete sends the conversation and returns the raw reply text.
	Complete(ctx context.Context, conv prompt.Conversation) (string, error)
}

// Options configures an HTTP client.
type Options struct {
	// APIKey is the bearer credential. Required.
	APIKey string
	// Model is the model identifier sent with every request. Required.
	Model string
	// BaseURL overrides DefaultBaseURL, e.g. for a proxy or a test server.
	BaseURL string
	// Timeout overrides DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the underlying transport. Mostly for tests.
	HTTPClient *http.Client
}

// New creates an HTTP completion client.
func New(opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, errors.Errorf("api key is required")
	}
	if opts.Model == "" {
		return nil, errors.Errorf("model is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &httpCompleter{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		timeout:    opts.Timeout,
		httpClient: httpClient,
	}, nil
}

type httpCompleter struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Wire shapes for /v1/chat/completions.
type chatRequest struct {
	Model    string              `json:"model"`
	Messages prompt.Conversation `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete implements Client against the chat-completions endpoint. Any
// transport or response-shape failure is returned as an error; the caller
// decides how many attempts it is worth.
func (c *httpCompleter) Complete(ctx context.Context, conv prompt.Conversation) (string, error) {
	logger := zerolog.Ctx(ctx)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: conv})
	if err != nil {
		return "", errors.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	logger.Debug().Str("model", c.model).Int("messages", len(conv)).Msg("requesting completion")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Errorf("sending completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Errorf("reading completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("completion request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Errorf("parsing completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", errors.Errorf("completion API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.Errorf("completion response has no choices")
	}

	content := parsed.Choices[0].Message.Content
	logger.Debug().Dur("elapsed", time.Since(start)).Int("response_len", len(content)).Msg("completion received")

	return content, nil
}
