package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category sentinels. Match with errors.Is; every richer error type below
// unwraps to one or more of these.
var (
	ErrConnection   = fmt.Errorf("connection failed")
	ErrAPI          = fmt.Errorf("api error")
	ErrAuth         = fmt.Errorf("authentication failed")
	ErrForbidden    = fmt.Errorf("forbidden")
	ErrNotFound     = fmt.Errorf("resource not found")
	ErrGone         = fmt.Errorf("resource expired")
	ErrRateLimit    = fmt.Errorf("rate limit exceeded")
	ErrTimeout      = fmt.Errorf("operation timed out")
	ErrStream       = fmt.Errorf("stream read failed")
	ErrStreamClosed = fmt.Errorf("stream closed")

	// Local misuse detected before any request is sent.
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConfigLoad   = fmt.Errorf("failed to load configuration")
	ErrDecryption   = fmt.Errorf("decryption failed")
	ErrEncryption   = fmt.Errorf("encryption operation failed")
	ErrCircuitOpen  = fmt.Errorf("circuit breaker open")
)

// APIError is a non-2xx HTTP response. Kind is the status-specific sentinel
// (ErrAuth, ErrNotFound, ...) or ErrAPI for unmapped statuses.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d): %s", e.kindText(), e.StatusCode, e.Message)
}

func (e *APIError) kindText() string {
	if e.Kind == nil {
		return ErrAPI.Error()
	}
	return e.Kind.Error()
}

// Unwrap lets errors.Is match both the status kind and ErrAPI.
func (e *APIError) Unwrap() []error {
	if e.Kind == nil || e.Kind == ErrAPI {
		return []error{ErrAPI}
	}
	return []error{e.Kind, ErrAPI}
}

// RateLimitError is a 429 response. RetryAfter is only meaningful when
// HasRetryAfter is set.
type RateLimitError struct {
	APIError
	RetryAfter    time.Duration
	HasRetryAfter bool
}

func (e *RateLimitError) Error() string {
	if e.HasRetryAfter {
		return fmt.Sprintf("%s (retry after %s)", e.APIError.Error(), e.RetryAfter)
	}
	return e.APIError.Error()
}

func (e *RateLimitError) Unwrap() []error { return e.APIError.Unwrap() }

// As exposes the embedded APIError to errors.As(err, **APIError).
func (e *RateLimitError) As(target any) bool {
	if p, ok := target.(**APIError); ok {
		*p = &e.APIError
		return true
	}
	return false
}

// ConnectionError reports a transport failure before any response arrived.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConnection}
	}
	return []error{ErrConnection, e.Err}
}

// TimeoutError is returned by run-and-wait when no terminal status was seen
// within Timeout.
type TimeoutError struct {
	RunID   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("workflow %s did not complete within %s", e.RunID, e.Timeout)
	}
	return fmt.Sprintf("workflow did not complete within %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// StreamError is a read failure after streaming has started.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("%s: %v", ErrStream, e.Err) }

func (e *StreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStream}
	}
	return []error{ErrStream, e.Err}
}

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Workflows.Run")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrConnection) || errors.Is(err, ErrCircuitOpen) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// KindForStatus returns the sentinel for an HTTP status code.
func KindForStatus(status int) error {
	switch status {
	case 401:
		return ErrAuth
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 410:
		return ErrGone
	case 429:
		return ErrRateLimit
	default:
		return ErrAPI
	}
}

var defaultMessages = map[error]string{
	ErrAuth:      "Authentication failed",
	ErrForbidden: "Forbidden",
	ErrNotFound:  "Resource not found",
	ErrGone:      "Resource expired",
	ErrRateLimit: "Rate limit exceeded",
}

// NewAPIError builds the error for a non-2xx response. message is the
// server-supplied text; when empty the kind's default message is used.
// A 429 yields a *RateLimitError, everything else an *APIError.
func NewAPIError(status int, message, body, retryAfter string) error {
	kind := KindForStatus(status)
	if message == "" {
		message = defaultMessages[kind]
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	base := APIError{Kind: kind, StatusCode: status, Message: message, Body: body}
	if kind == ErrRateLimit {
		d, ok := ParseRetryAfter(retryAfter)
		return &RateLimitError{APIError: base, RetryAfter: d, HasRetryAfter: ok}
	}
	return &base
}

// ParseRetryAfter parses a Retry-After header given in integer or fractional
// seconds. HTTP-date values and garbage report ok=false.
func ParseRetryAfter(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeConnection   ErrorCode = "CONNECTION"
	CodeAPI          ErrorCode = "API_ERROR"
	CodeAuth         ErrorCode = "AUTH_FAILED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeGone         ErrorCode = "GONE"
	CodeRateLimit    ErrorCode = "RATE_LIMIT"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeStream       ErrorCode = "STREAM_ERROR"
	CodeStreamClosed ErrorCode = "STREAM_CLOSED"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeConfigLoad   ErrorCode = "CONFIG_LOAD"
	CodeDecryption   ErrorCode = "DECRYPTION"
	CodeEncryption   ErrorCode = "ENCRYPTION"
	CodeCircuitOpen  ErrorCode = "CIRCUIT_OPEN"
)

var errorCodeMap = map[error]ErrorCode{
	ErrConnection:   CodeConnection,
	ErrAPI:          CodeAPI,
	ErrAuth:         CodeAuth,
	ErrForbidden:    CodeForbidden,
	ErrNotFound:     CodeNotFound,
	ErrGone:         CodeGone,
	ErrRateLimit:    CodeRateLimit,
	ErrTimeout:      CodeTimeout,
	ErrStream:       CodeStream,
	ErrStreamClosed: CodeStreamClosed,
	ErrInvalidInput: CodeInvalidInput,
	ErrConfigLoad:   CodeConfigLoad,
	ErrDecryption:   CodeDecryption,
	ErrEncryption:   CodeEncryption,
	ErrCircuitOpen:  CodeCircuitOpen,
}

// codePriority orders the chain walk so that specific kinds win over ErrAPI,
// which every HTTP-status error also matches.
var codePriority = []error{
	ErrAuth, ErrForbidden, ErrNotFound, ErrGone, ErrRateLimit,
	ErrTimeout, ErrStreamClosed, ErrStream, ErrConnection, ErrCircuitOpen,
	ErrInvalidInput, ErrConfigLoad, ErrDecryption, ErrEncryption,
	ErrAPI,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	for _, sentinel := range codePriority {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying error.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
