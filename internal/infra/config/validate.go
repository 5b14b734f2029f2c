package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateClient(cfg, ve)
	validateResilience(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateMetrics(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateClient(cfg *Config, ve *ValidationError) {
	if cfg.BaseURL == "" {
		ve.Add("base_url must not be empty")
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add("base_url %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		ve.Add("timeout must be > 0")
	}
	if cfg.RunAndWait.Timeout <= 0 {
		ve.Add("run_and_wait.timeout must be > 0")
	}
	if strings.HasPrefix(cfg.APIKey, encPrefix) {
		ve.Add("api_key is encrypted but SPLOX_CONFIG_KEY is not set")
	}
	for name := range cfg.Headers {
		if strings.TrimSpace(name) == "" {
			ve.Add("headers: empty header name")
		}
	}
	if cfg.WebhookURL != "" {
		if u, err := url.Parse(cfg.WebhookURL); err != nil || u.Host == "" {
			ve.Add("webhook_url %q must be an absolute URL", cfg.WebhookURL)
		}
	}
}

func validateResilience(cfg *Config, ve *ValidationError) {
	if cfg.CircuitBreaker.Enabled {
		if cfg.CircuitBreaker.MaxFailures == 0 {
			ve.Add("circuit_breaker.max_failures must be > 0")
		}
		if cfg.CircuitBreaker.Timeout <= 0 {
			ve.Add("circuit_breaker.timeout must be > 0")
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			ve.Add("rate_limit.requests_per_second must be > 0")
		}
		if cfg.RateLimit.Burst < 1 {
			ve.Add("rate_limit.burst must be >= 1")
		}
	}
	if cfg.Pool.MaxIdleConns < 0 || cfg.Pool.MaxIdleConnsPerHost < 0 || cfg.Pool.MaxConnsPerHost < 0 {
		ve.Add("pool sizes must not be negative")
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q is invalid (debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q is invalid (text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracer.exporter %q is invalid (noop, stdout)", cfg.Tracer.Exporter)
	}
}

func validateMetrics(cfg *Config, ve *ValidationError) {
	if !cfg.Metrics.Enabled {
		return
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
		ve.Add("metrics.addr %q is invalid: %v", cfg.Metrics.Addr, err)
	}
}
