// Package upstream talks to the remote billing REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/govbilling/billdash/internal/platform/cache"
)

const maxErrorBody = 4 << 10

// Outcomes reported to the Observer.
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeServerError  = "server_error"
	OutcomeDataError    = "data_error"
)

// Config locates the billing API.
type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	ItemsPath   string
	UpdatePath  string
	NurseryPath string
}

// Observer receives one event per upstream call.
type Observer interface {
	ObserveUpstream(op, outcome string, elapsed time.Duration)
}

// Client wraps interactions with the billing API.
type Client struct {
	baseURL    string
	token      string
	paths      Config
	httpClient *http.Client
	cache      *cache.Cache
	observer   Observer
	logger     *slog.Logger
}

// NewClient constructs a new client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.ItemsPath == "" {
		cfg.ItemsPath = "/billing-items"
	}
	if cfg.UpdatePath == "" {
		cfg.UpdatePath = "/update-billing-item"
	}
	if cfg.NurseryPath == "" {
		cfg.NurseryPath = "/nursery-financial"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		paths:      cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithCache enables read-through caching of list calls.
func (c *Client) WithCache(cache *cache.Cache) *Client {
	c.cache = cache
	return c
}

// WithObserver installs a metrics observer.
func (c *Client) WithObserver(o Observer) *Client {
	c.observer = o
	return c
}

// WithHTTPClient overrides the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Invalidate drops every cached list response.
func (c *Client) Invalidate(ctx context.Context) error {
	return c.cache.Bump(ctx)
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do executes a call and returns the raw response body of a 2xx response.
func (c *Client) do(ctx context.Context, in call) (body []byte, err error) {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if c.observer != nil {
			c.observer.ObserveUpstream(in.op, outcome, time.Since(start))
		}
		if err != nil {
			c.logger.Warn("upstream call failed", slog.String("op", in.op), slog.String("outcome", outcome), slog.Any("error", err))
		}
	}()

	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}
	var reader io.Reader
	if in.body != nil {
		raw, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("upstream %s: encode body: %w", in.op, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, in.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("upstream %s: build request: %w", in.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = OutcomeNetworkError
		return nil, &NetworkError{Op: in.op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = OutcomeServerError
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServerError{Op: in.op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		outcome = OutcomeNetworkError
		return nil, &NetworkError{Op: in.op, Err: err}
	}
	return body, nil
}

// dataError records a shape failure on a call that already succeeded at HTTP level.
func (c *Client) dataError(op string, err error) error {
	if c.observer != nil {
		c.observer.ObserveUpstream(op, OutcomeDataError, 0)
	}
	c.logger.Warn("upstream payload rejected", slog.String("op", op), slog.Any("error", err))
	return &DataError{Op: op, Err: err}
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
