package splox

import "splox-go/internal/domain"

// Sentinel errors. Match with errors.Is; every HTTP status error also
// matches ErrAPI.
var (
	ErrConnection   = domain.ErrConnection
	ErrAPI          = domain.ErrAPI
	ErrAuth         = domain.ErrAuth
	ErrForbidden    = domain.ErrForbidden
	ErrNotFound     = domain.ErrNotFound
	ErrGone         = domain.ErrGone
	ErrRateLimit    = domain.ErrRateLimit
	ErrTimeout      = domain.ErrTimeout
	ErrStream       = domain.ErrStream
	ErrStreamClosed = domain.ErrStreamClosed
	ErrInvalidInput = domain.ErrInvalidInput
	ErrCircuitOpen  = domain.ErrCircuitOpen
)

// Rich error types. Match with errors.As.
type (
	APIError        = domain.APIError
	RateLimitError  = domain.RateLimitError
	ConnectionError = domain.ConnectionError
	TimeoutError    = domain.TimeoutError
	StreamError     = domain.StreamError
	ErrorCode       = domain.ErrorCode
)

// ErrorCodeOf maps any error to a stable machine-readable code.
func ErrorCodeOf(err error) ErrorCode { return domain.ErrorCodeOf(err) }

// IsRetryable reports whether retrying err later may succeed.
func IsRetryable(err error) bool { return domain.IsRetryableError(err) }
