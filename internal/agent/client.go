// Package agent is the client for the external custom agent API.
//
// Send posts a prompt and context to the configured agent and returns the raw
// reply text together with any JSON object recovered from it. Calls go
// through a client-side rate limiter and, when configured, a Redis cache.
// There are no retries: callers decide how to degrade.
package agent

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when base URL, API key or agent id is missing
var ErrNotConfigured = errors.New("custom agent not configured")

const maxReplyBytes = 1 << 20

// StatusError is returned for a non-2xx reply
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("custom agent returned %d: %s", e.StatusCode, body)
}

// Config holds the agent endpoint and client limits
type Config struct {
	BaseURL       string
	APIKey        string
	AgentID       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	CacheTTL      time.Duration
}

// Configured reports whether every required field is set
func (c Config) Configured() bool {
	return c.BaseURL != "" && c.APIKey != "" && c.AgentID != ""
}

// Reply is a successful agent response
type Reply struct {
	Raw    string
	Data   map[string]interface{}
	Cached bool
}

// Sender is implemented by Client and by test doubles
type Sender interface {
	Configured() bool
	Send(ctx context.Context, prompt string, context map[string]interface{}) (*Reply, error)
}

// Outcome labels reported to an Observer
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeError   = "error"
	OutcomeLimited = "rate_limited"
)

// Observer is told about every call
type Observer func(outcome string, elapsed time.Duration)

// Client calls the custom agent API
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *rate.Limiter
	cache    Cache
	observer Observer
	logger   *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithCache enables reply caching
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithObserver registers a call observer
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client. An unconfigured client is valid; Send then
// returns ErrNotConfigured.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the agent can be called
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// Send posts the prompt to the agent. A single attempt is made.
func (c *Client) Send(ctx context.Context, prompt string, promptContext map[string]interface{}) (*Reply, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if promptContext == nil {
		promptContext = map[string]interface{}{}
	}

	start := time.Now()
	key := c.cacheKey(prompt, promptContext)

	if c.cache != nil {
		if raw, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.WarnContext(ctx, "agent cache read failed", slog.String("error", err.Error()))
		} else if ok {
			c.observe(OutcomeCached, start)
			return &Reply{Raw: raw, Data: ExtractJSON(raw), Cached: true}, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.observe(OutcomeLimited, start)
		return nil, fmt.Errorf("custom agent rate limit: %w", err)
	}

	raw, err := c.post(ctx, prompt, promptContext)
	if err != nil {
		c.observe(OutcomeError, start)
		c.logger.WarnContext(ctx, "custom agent call failed",
			slog.String("agent_id", c.cfg.AgentID),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	c.observe(OutcomeSuccess, start)

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL); err != nil {
			c.logger.WarnContext(ctx, "agent cache write failed", slog.String("error", err.Error()))
		}
	}

	c.logger.DebugContext(ctx, "custom agent call completed",
		slog.String("agent_id", c.cfg.AgentID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &Reply{Raw: raw, Data: ExtractJSON(raw)}, nil
}

func (c *Client) post(ctx context.Context, prompt string, promptContext map[string]interface{}) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"message": prompt,
		"context": promptContext,
	})
	if err != nil {
		return "", fmt.Errorf("encode agent request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/agents/" + url.PathEscape(c.cfg.AgentID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call custom agent: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("read agent reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return string(data), nil
}

func (c *Client) cacheKey(prompt string, promptContext map[string]interface{}) string {
	encoded, _ := json.Marshal(promptContext)
	sum := sha256.Sum256([]byte(c.cfg.AgentID + "\x00" + prompt + "\x00" + string(encoded)))
	return hex.EncodeToString(sum[:])
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.observer != nil {
		c.observer(outcome, time.Since(start))
	}
}
