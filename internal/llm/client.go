package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/smartlabel/smartlabel/internal/instrumentation"
	"github.com/smartlabel/smartlabel/internal/retry"
)

// defaultHTTPClient is a configured HTTP client with proper timeouts.
var defaultHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Completer issues one text-generation request and returns the raw
// completion text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request describes a single chat-completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int

	// Operation tags the request in metrics, e.g. "generate" or
	// "classify".
	Operation string
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the retry policy for generation requests.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithMetrics records every generation request on the given recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRateLimit caps requests per second. Zero or negative disables
// the limiter.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient creates a generation-service client for the given endpoint,
// credential and model.
func NewClient(url, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		httpClient: defaultHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		policy:     retry.DefaultPolicy(),
		metrics:    &instrumentation.Metrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
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
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat-completion request and returns the raw text
// of the first choice. Rate-limit and server-side failures are retried
// under the shared retry policy before the error is surfaced.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := retry.Do(ctx, c.policy, func() (string, error) {
		return c.complete(ctx, req)
	})

	operation := req.Operation
	if operation == "" {
		operation = "complete"
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGenerationRequest(ctx, operation, status, time.Since(start))

	return text, err
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("completion request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		return "", retry.Transient(fmt.Errorf("completion request failed with status %s", res.Status))
	}
	if res.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("completion request failed with status %s: %s", res.Status, slurp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion service error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
