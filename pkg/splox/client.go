package splox

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"splox-go/internal/domain"
	"splox-go/internal/infra/config"
	"splox-go/internal/infra/logger"
	"splox-go/internal/runwait"
	"splox-go/internal/transport"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = config.DefaultBaseURL

// DefaultTimeout bounds REST calls when WithTimeout is not given.
const DefaultTimeout = config.DefaultTimeout

// Client is the entry point to the API. It is safe for concurrent use;
// the resource services share one connection pool.
type Client struct {
	t          *transport.Transport
	logger     *slog.Logger
	runTimeout time.Duration

	Workflows *WorkflowsService
	Chats     *ChatsService
	Events    *EventsService
	Billing   *BillingService
	Memory    *MemoryService
	MCP       *MCPService
	LLM       *LLMService
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	o := options{timeout: DefaultTimeout, runTimeout: runwait.DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		o.apiKey = os.Getenv("SPLOX_API_KEY")
	}
	if o.baseURL == "" {
		o.baseURL = os.Getenv("SPLOX_BASE_URL")
	}
	if o.baseURL == "" {
		o.baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(o.baseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.NewDomainError("splox.New", domain.ErrInvalidInput, fmt.Sprintf("base URL %q must be an absolute http(s) URL", o.baseURL))
	}
	if o.timeout <= 0 {
		return nil, domain.NewDomainError("splox.New", domain.ErrInvalidInput, "timeout must be > 0")
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}

	c := &Client{
		t: transport.New(transport.Config{
			BaseURL:        o.baseURL,
			APIKey:         o.apiKey,
			Timeout:        o.timeout,
			UserAgent:      o.userAgent,
			Headers:        o.headers,
			HTTPClient:     o.httpClient,
			Pool:           o.pool,
			CircuitBreaker: o.breaker,
			RateLimit:      o.rateLimit,
			Logger:         o.logger,
		}),
		logger:     o.logger,
		runTimeout: o.runTimeout,
	}
	c.Workflows = &WorkflowsService{c: c}
	c.Chats = &ChatsService{c: c}
	c.Events = &EventsService{c: c}
	c.Billing = &BillingService{c: c}
	c.Memory = &MemoryService{c: c}
	c.MCP = &MCPService{c: c}
	c.LLM = &LLMService{c: c}
	return c, nil
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string { return c.t.BaseURL() }

// CircuitState reports "closed", "half-open", "open", or "disabled".
func (c *Client) CircuitState() string { return c.t.BreakerState() }

// Close releases idle pooled connections. Open streams are not affected.
func (c *Client) Close() error {
	c.t.Close()
	return nil
}

// pathf builds a request path, escaping every argument as one segment.
func pathf(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, args...)
}
