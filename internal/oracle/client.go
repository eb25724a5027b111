// Package oracle is the capability-bounded client for the external LLM
// provider. It speaks the OpenAI-compatible HTTP API and exposes exactly two
// operations: text completion and embedding. The package never interprets
// the model's output beyond extracting the text; structured parsing is the
// caller's responsibility.
//
// Failures are reported as *Error with a transient/permanent classification
// so callers can decide whether a client-side retry is worthwhile. The
// client itself never retries: every core operation is single-attempt and
// caller-retriable.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Client is the contract consumed by the service layer.
type Client interface {
	// Complete sends a system+user prompt pair and returns the raw reply text.
	Complete(ctx context.Context, system, user string) (string, error)
	// Embed returns the embedding vector for the given input text.
	Embed(ctx context.Context, input string) ([]float64, error)
}

// Config configures an HTTPClient.
type Config struct {
	BaseURL    string        // e.g. "https://api.openai.com"
	APIKey     string        // bearer credential
	Model      string        // completion model, e.g. "gpt-4o"
	EmbedModel string        // embedding model, e.g. "text-embedding-3-small"
	Timeout    time.Duration // wall-clock bound per request
	MaxTokens  int           // completion token cap; 0 means provider default
}

// HTTPClient implements Client over the provider's REST API.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient builds a client with an enforced timeout and a traced
// transport so oracle calls appear as client spans under the request trace.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Client. It posts a two-message chat completion and
// returns the trimmed text of the first choice.
func (c *HTTPClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   c.cfg.MaxTokens,
	}
	var resp chatResponse
	if err := c.post(ctx, "/v1/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Op: "complete", Err: errors.New("response contained no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Client.
func (c *HTTPClient) Embed(ctx context.Context, input string) ([]float64, error) {
	reqBody := embedRequest{Model: c.cfg.EmbedModel, Input: []string{input}}
	var resp embedResponse
	if err := c.post(ctx, "/v1/embeddings", reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Op: "embed", Err: errors.New("response contained no data")}
	}
	return resp.Data[0].Embedding, nil
}

// post performs one request/response round trip. Non-2xx statuses, network
// faults, and decode failures all surface as *Error.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	op := strings.TrimPrefix(path, "/v1/")

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return &Error{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Transient: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Transient: true, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Op:        op,
			Transient: retryableStatus(resp.StatusCode),
			Err:       fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncateBody(raw)),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// retryableStatus reports whether an HTTP status indicates a fault the
// caller may retry (timeout, quota, or server-side failure).
func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		(code >= 500 && code <= 599)
}

// isTimeout reports whether a transport error was a deadline or timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// truncateBody bounds provider error bodies before they land in error text.
func truncateBody(raw []byte) string {
	const max = 512
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
