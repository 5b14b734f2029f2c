package transport

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splox-go/internal/domain"
)

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(c *Config) {
		c.CircuitBreaker = &BreakerConfig{MaxFailures: 2, Timeout: time.Minute}
	})

	for range 2 {
		_, err := tr.Do(context.Background(), http.MethodGet, "/workflows", nil, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAPI)
		var apiErr *domain.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	}
	assert.Equal(t, "open", tr.BreakerState())

	_, err := tr.Do(context.Background(), http.MethodGet, "/workflows", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.True(t, domain.IsRetryableError(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, func(c *Config) {
		c.CircuitBreaker = &BreakerConfig{MaxFailures: 1}
	})

	for range 3 {
		_, err := tr.Do(context.Background(), http.MethodGet, "/workflows/x", nil, nil, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, "closed", tr.BreakerState())
}

func TestBreakerCountsConnectionFailures(t *testing.T) {
	tr := New(Config{
		BaseURL: "http://splox.invalid",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, assert.AnError
		})},
		CircuitBreaker: &BreakerConfig{MaxFailures: 1},
	})

	_, err := tr.Do(context.Background(), http.MethodGet, "/workflows", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrConnection)
	_, err = tr.Do(context.Background(), http.MethodGet, "/workflows", nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
}

func TestBreakerDisabledByDefault(t *testing.T) {
	tr := New(Config{BaseURL: "http://localhost"})
	assert.Equal(t, "disabled", tr.BreakerState())
}

func TestNewPooledTransportDefaults(t *testing.T) {
	tp := NewPooledTransport(0, PoolConfig{})
	assert.Equal(t, defaultMaxIdleConns, tp.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tp.MaxIdleConnsPerHost)
	assert.Equal(t, defaultMaxConnsPerHost, tp.MaxConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tp.IdleConnTimeout)
	assert.Equal(t, 30*time.Second, tp.ResponseHeaderTimeout)

	tp = NewPooledTransport(5*time.Second, PoolConfig{MaxIdleConns: 3})
	assert.Equal(t, 3, tp.MaxIdleConns)
	assert.Equal(t, 5*time.Second, tp.ResponseHeaderTimeout)
}

func TestNewStreamTransportDropsHeaderTimeout(t *testing.T) {
	pooled := NewPooledTransport(5*time.Second, PoolConfig{MaxIdleConns: 3})
	st := newStreamTransport(pooled)
	assert.Zero(t, st.ResponseHeaderTimeout)
	assert.Equal(t, 3, st.MaxIdleConns)
	assert.Equal(t, 5*time.Second, pooled.ResponseHeaderTimeout)
}
