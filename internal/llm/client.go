package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// DefaultMaxWait bounds a single completion call.
	DefaultMaxWait = 60 * time.Second
	// DefaultBaseURL is used when the configuration leaves the base URL empty.
	DefaultBaseURL = "https://api.deepseek.com"

	temperature = 0
)

// UsageRecorder receives token usage reported by completed calls.
type UsageRecorder interface {
	UpdateUsage(u Usage)
}

// Config identifies the backend and model for a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CallOptions tunes a single call.
type CallOptions struct {
	// MaxWait is the per-call timeout. Zero means DefaultMaxWait.
	MaxWait time.Duration
}

func (o CallOptions) maxWait() time.Duration {
	if o.MaxWait <= 0 {
		return DefaultMaxWait
	}
	return o.MaxWait
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	recorder UsageRecorder
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithUsageRecorder sets where reported usage is sent.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. The API key is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends msgs and waits for the full reply. The call is cancelled
// when ctx is done or opts.MaxWait elapses, whichever comes first.
func (c *Client) Complete(ctx context.Context, msgs []Message, opts CallOptions) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.maxWait())
	defer cancel()

	payload, err := c.marshalRequest(msgs, false)
	if err != nil {
		return Result{}, err
	}

	c.logger.Debug("chat completion request",
		zap.String("model", c.model),
		zap.Int("messages", len(msgs)),
		zap.Bool("stream", false),
	)

	resp, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, transportError(err)
	}
	if !gjson.ValidBytes(body) {
		return Result{}, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: "malformed response body"}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: "decoding response", Err: err}
	}

	res := Result{}
	if len(parsed.Choices) > 0 {
		res.Content = parsed.Choices[0].Message.Content
	}
	if u, ok := ParseUsage(body); ok {
		res.Usage = &u
		c.record(u)
	}

	c.logger.Debug("chat completion response",
		zap.Int("contentLength", len(res.Content)),
		zap.Bool("hasUsage", res.Usage != nil),
	)
	return res, nil
}

// ListModels returns the model ids the backend advertises.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultMaxWait)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: "decoding model list", Err: err}
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (c *Client) marshalRequest(msgs []Message, stream bool) ([]byte, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
		Stream:      stream,
	}
	if stream {
		body.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return payload, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func (c *Client) record(u Usage) {
	if c.recorder != nil {
		c.recorder.UpdateUsage(u)
	}
}

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Temperature   float64        `json:"temperature"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type listResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
