package splox

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	runTimeout time.Duration
	userAgent  string
	headers    map[string]string
	httpClient *http.Client
	pool       PoolConfig
	breaker    *BreakerConfig
	rateLimit  *RateLimitConfig
	logger     *slog.Logger
}

// WithAPIKey sets the bearer token. Without it SPLOX_API_KEY is used.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL sets the API root. Without it SPLOX_BASE_URL or
// DefaultBaseURL is used.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTimeout bounds each REST call. Streams are not affected.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRunAndWaitTimeout sets the default deadline of RunAndWait.
func WithRunAndWaitTimeout(d time.Duration) Option {
	return func(o *options) { o.runTimeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHTTPClient replaces the pooled default *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithConnectionPool sizes the default connection pool.
func WithConnectionPool(p PoolConfig) Option {
	return func(o *options) { o.pool = p }
}

// WithCircuitBreaker fails calls fast after repeated connection failures
// or 5xx responses. Blocked calls return ErrCircuitOpen.
func WithCircuitBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = &cfg }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = &RateLimitConfig{RequestsPerSecond: requestsPerSecond, Burst: burst}
	}
}

// WithLogger sets a custom slog.Logger. The default logger discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
