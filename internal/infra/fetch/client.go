package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

const (
	// DefaultUserAgent представляется сайтам при обходе.
	DefaultUserAgent = "SMM/1.0 (+smm-planner content crawler)"
	defaultTimeout   = 8 * time.Second
	maxBodyBytes     = 5 << 20
)

// Client реализует domain.Fetcher поверх net/http.
type Client struct {
	httpClient *http.Client
	userAgent  string
	component  string
}

var _ domain.Fetcher = (*Client)(nil)

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent задаёт заголовок User-Agent по умолчанию.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithComponent задаёт метку component для метрик.
func WithComponent(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.component = name
		}
	}
}

// NewClient создаёт клиент с коротким таймаутом.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  DefaultUserAgent,
		component:  "fetch",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get выполняет GET без повторов. Неуспешный статус ошибкой не считается.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (domain.FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return domain.FetchResponse{}, fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveNetworkRequest(c.component, "get", hostOf(rawURL), start, err)
	if err != nil {
		return domain.FetchResponse{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.FetchResponse{Status: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}
	return domain.FetchResponse{Status: resp.StatusCode, Body: string(body)}, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
