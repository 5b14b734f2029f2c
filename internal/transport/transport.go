// Package transport performs authenticated JSON requests against the Splox
// REST API and opens its server-sent event streams.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"splox-go/internal/domain"
	"splox-go/internal/infra/logger"
	"splox-go/internal/infra/metrics"
	"splox-go/internal/infra/tracer"
	"splox-go/internal/sse"
)

// maxResponseBody is the maximum REST response body size read into memory.
const maxResponseBody = 32 * 1024 * 1024

// maxErrorBody bounds the body read from a failed stream handshake.
const maxErrorBody = 64 * 1024

// RequestIDHeader carries a per-request ULID for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// Config configures a Transport. Zero values fall back to defaults.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// HTTPClient replaces the pooled default client. Its Timeout applies to
	// REST calls only; streams use a copy without an overall timeout. The
	// client's RoundTripper is shared as is, so any response header timeout
	// it sets also bounds the stream handshake.
	HTTPClient *http.Client
	Pool       PoolConfig

	CircuitBreaker *BreakerConfig
	RateLimit      *RateLimitConfig

	Logger *slog.Logger
}

// RateLimitConfig caps outgoing requests per second.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Transport is safe for concurrent use.
type Transport struct {
	baseURL   string
	apiKey    string
	userAgent string
	headers   map[string]string

	client       *http.Client
	streamClient *http.Client

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *slog.Logger
}

// DefaultUserAgent identifies this client library.
const DefaultUserAgent = "splox-go"

// New builds a Transport from cfg.
func New(cfg Config) *Transport {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	var streamClient http.Client
	if client == nil {
		pooled := NewPooledTransport(timeout, cfg.Pool)
		client = &http.Client{Transport: pooled, Timeout: timeout}
		streamClient.Transport = newStreamTransport(pooled)
	} else {
		streamClient = *client
		streamClient.Timeout = 0
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	t := &Transport{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		userAgent:    ua,
		headers:      headers,
		client:       client,
		streamClient: &streamClient,
		logger:       log,
	}
	if rl := cfg.RateLimit; rl != nil && rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst)
	}
	if cfg.CircuitBreaker != nil {
		t.breaker = newBreaker(*cfg.CircuitBreaker, log)
	}
	return t
}

// BaseURL returns the API root without a trailing slash.
func (t *Transport) BaseURL() string { return t.baseURL }

// Close releases idle pooled connections.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
	t.streamClient.CloseIdleConnections()
}

// Do sends one REST request and returns the raw response body of a 2xx
// response. body, when non-nil, is JSON-encoded. extra headers override the
// client defaults for this call only.
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, body any, extra http.Header) ([]byte, error) {
	ctx, span := tracer.StartClientSpan(ctx, method, path)
	defer span.End()

	req, err := t.newRequest(ctx, method, path, query, body, extra)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := t.send(ctx, t.client, req)
	if err != nil {
		metrics.ObserveRequest(method, 0, time.Since(start))
		tracer.RecordError(span, err)
		t.logger.Debug("splox request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	tracer.SetHTTPStatus(span, resp.StatusCode)
	if err != nil {
		err = &domain.ConnectionError{Op: "read " + method, URL: req.URL.Redacted(), Err: err}
		tracer.RecordError(span, err)
		return nil, err
	}

	t.logger.Debug("splox request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, MapHTTPError(resp, data)
	}
	return data, nil
}

// DoJSON is Do followed by decoding the response into out. An empty body
// decodes as an empty JSON object. out may be nil to discard the body.
func (t *Transport) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any, extra http.Header) error {
	data, err := t.Do(ctx, method, path, query, body, extra)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Stream opens the event stream at path. The returned stream owns the
// connection; cancelling ctx aborts it.
func (t *Transport) Stream(ctx context.Context, path string, extra http.Header) (*sse.Stream, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	spanCtx, span := tracer.StartClientSpan(reqCtx, http.MethodGet, path)
	span.SetAttributes(tracer.StringAttr("splox.stream", "sse"))

	fail := func(err error) (*sse.Stream, error) {
		tracer.RecordError(span, err)
		span.End()
		cancel()
		return nil, err
	}

	req, err := t.newRequest(spanCtx, http.MethodGet, path, nil, nil, extra)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := t.send(reqCtx, t.streamClient, req)
	if err != nil {
		metrics.ObserveRequest(http.MethodGet, 0, time.Since(start))
		return fail(err)
	}
	metrics.ObserveRequest(http.MethodGet, resp.StatusCode, time.Since(start))
	tracer.SetHTTPStatus(span, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return fail(MapHTTPError(resp, data))
	}

	metrics.IncStreamOpened()
	t.logger.Debug("splox stream opened", "path", path, "request_id", req.Header.Get(RequestIDHeader))

	return sse.NewStream(resp.Body,
		sse.WithCancel(cancel),
		sse.WithEventHook(func(ev domain.StreamEvent) {
			metrics.IncStreamEvent(ev.Kind.String())
		}),
		sse.WithCloseHook(func() {
			metrics.IncStreamClosed()
			span.End()
			t.logger.Debug("splox stream closed", "path", path)
		}),
	), nil
}

func (t *Transport) newRequest(ctx context.Context, method, path string, query url.Values, body any, extra http.Header) (*http.Request, error) {
	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set(RequestIDHeader, ulid.Make().String())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// send applies the rate limiter and circuit breaker around client.Do.
// Transport failures become *domain.ConnectionError unless ctx ended first.
func (t *Transport) send(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	do := func() (*http.Response, error) {
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &domain.ConnectionError{Op: req.Method, URL: req.URL.Redacted(), Err: err}
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	}

	if t.breaker == nil {
		resp, err := do()
		if errors.Is(err, errServerStatus) {
			return resp, nil
		}
		return resp, err
	}
	return t.executeBreaker(do)
}

// MapHTTPError converts a non-2xx response into the typed error for its
// status. The message is the string "error" field of a JSON object body,
// else the raw body.
func MapHTTPError(resp *http.Response, body []byte) error {
	text := string(body)
	message := text
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		var s string
		if raw, ok := obj["error"]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			message = s
		}
	}
	return domain.NewAPIError(resp.StatusCode, message, text, resp.Header.Get("Retry-After"))
}
