package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/prepdeck/prepdeck/internal/config"
	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/llm"
)

var ErrCircuitOpen = errors.New("openrouter circuit open")

// Client calls the OpenRouter chat-completions endpoint and adds timeout,
// bounded transient retries, and a circuit breaker.
type Client struct {
	cfg    config.OpenRouterConfig
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

var _ llm.Provider = (*Client)(nil)

// package-level logger; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by this package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewClient creates a new OpenRouter client wrapper.
func NewClient(cfg config.OpenRouterConfig, httpClient *http.Client) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 45 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{cfg: cfg, client: httpClient}
	logger.Info("openrouter: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c
}

func NewDefaultClient(cfg config.OpenRouterConfig) *Client {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// Close releases idle connections on the underlying transport. Idempotent.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request. Timeouts and non-2xx statuses
// surface as upstream errors; only transport-level failures before the
// deadline are retried, up to cfg.Retries.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	var empty llm.Result

	if c.cfg.APIKey == "" {
		return empty, apperr.Config("provider API key not configured")
	}
	if c.isCircuitOpen() {
		return empty, apperr.Upstream("provider circuit open").WithCause(ErrCircuitOpen)
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   req.Schema.Name,
				Strict: true,
				Schema: req.Schema.Schema,
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return empty, apperr.Internal("marshal chat request", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		start := time.Now()
		res, err := c.doOnce(ctx, payload)
		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			res.Meta = map[string]any{"model": c.cfg.Model, "latency_ms": time.Since(start).Milliseconds()}
			return res, nil
		}

		lastErr = err
		c.recordFailure()

		// a timeout or cancellation is a user-visible failure, never retried
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return empty, apperr.Upstream("provider request timed out").WithCause(err)
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			// non-2xx and empty-content failures are not transient
			return empty, err
		}

		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
		if c.isCircuitOpen() {
			return empty, apperr.Upstream("provider circuit open").WithCause(ErrCircuitOpen)
		}
	}

	return empty, apperr.Upstream("provider request failed").WithCause(lastErr)
}

func (c *Client) doOnce(ctx context.Context, payload []byte) (llm.Result, error) {
	var empty llm.Result

	ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctxReq, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return empty, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	httpReq.Header.Set("X-Title", c.cfg.Title)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return empty, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error("openrouter: non-2xx response", slog.Int("status", resp.StatusCode))
		return empty, apperr.Newf(apperr.KindUpstream, "provider returned status %d", resp.StatusCode).
			WithDetails(map[string]any{"body": string(b)})
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return empty, apperr.Upstream("decode provider response").WithCause(err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return empty, apperr.Upstream("no content received from provider")
	}

	return llm.Result{Text: parsed.Choices[0].Message.Content}, nil
}
