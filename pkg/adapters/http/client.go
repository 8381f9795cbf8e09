package http

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

	"github.com/aretw0/funnel/internal/logging"
	"github.com/aretw0/funnel/pkg/domain"
	"github.com/aretw0/funnel/pkg/ports"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Public API paths.
const (
	PathFunnels   = "/api/public/funnels/"
	PathAnalytics = "/api/public/analytics"
	PathLeads     = "/api/public/leads"
)

// maxDefinitionSize caps a fetched definition body.
const maxDefinitionSize = 8 << 20

// Client is the remote funnel service. It implements ports.FunnelSource and
// ports.Reporter.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *expirable.LRU[string, []byte]
	logger  *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithCache keeps up to size fetched definitions for ttl. A size of 0
// disables caching.
func WithCache(size int, ttl time.Duration) ClientOption {
	return func(cl *Client) {
		if size <= 0 {
			cl.cache = nil
			return
		}
		cl.cache = expirable.NewLRU[string, []byte](size, nil, ttl)
	}
}

// WithClientLogger sets the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cleanhttp.DefaultPooledClient(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ ports.FunnelSource = (*Client)(nil)
	_ ports.Reporter     = (*Client)(nil)
)

// Fetch loads a published definition. Failures are classified as
// domain.FetchError: 404 is NotFound, any other non-2xx status or an
// undecodable body is Failed, and a transport error is Connection.
// There is no retry.
func (c *Client) Fetch(ctx context.Context, uuid string) (*domain.Funnel, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(uuid); ok {
			return c.decode(uuid, body, 0)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathFunnels+url.PathEscape(uuid), nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchFailed, UUID: uuid, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("funnel fetch: transport error", "funnel", uuid, "err", err)
		return nil, &domain.FetchError{Kind: domain.FetchConnection, UUID: uuid, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.FetchError{Kind: domain.FetchNotFound, UUID: uuid, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.FetchError{Kind: domain.FetchFailed, UUID: uuid, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDefinitionSize))
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchConnection, UUID: uuid, Status: resp.StatusCode, Err: err}
	}

	f, err := c.decode(uuid, body, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Add(uuid, body)
	}
	return f, nil
}

// decode parses a definition body. status is the response status, or 0 for
// a body served from the cache.
func (c *Client) decode(uuid string, body []byte, status int) (*domain.Funnel, error) {
	f, err := domain.ParseFunnel(body, domain.FormatJSON)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchFailed, UUID: uuid, Status: status, Err: err}
	}
	return f, nil
}

// RecordEvent posts an analytics event. The response body is ignored.
func (c *Client) RecordEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	return c.post(ctx, PathAnalytics, event)
}

// SubmitLead posts a lead. The response body is ignored.
func (c *Client) SubmitLead(ctx context.Context, lead domain.Lead) error {
	return c.post(ctx, PathLeads, lead)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
