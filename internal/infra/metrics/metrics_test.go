package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusClass(tt.status), "status %d", tt.status)
	}
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "2xx"))
	ObserveRequest("GET", 200, 15*time.Millisecond)
	ObserveRequest("GET", 201, 15*time.Millisecond)
	assert.Equal(t, before+2, testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "2xx")))
}

func TestStreamCounters(t *testing.T) {
	opened := testutil.ToFloat64(streamsOpened)
	closed := testutil.ToFloat64(streamsClosed)
	events := testutil.ToFloat64(streamEvents.WithLabelValues("keepalive"))

	IncStreamOpened()
	IncStreamEvent("keepalive")
	IncStreamEvent("keepalive")
	IncStreamClosed()

	assert.Equal(t, opened+1, testutil.ToFloat64(streamsOpened))
	assert.Equal(t, closed+1, testutil.ToFloat64(streamsClosed))
	assert.Equal(t, events+2, testutil.ToFloat64(streamEvents.WithLabelValues("keepalive")))
}

func TestObserveRunAndWait(t *testing.T) {
	before := testutil.ToFloat64(runAndWaitTotal.WithLabelValues("timeout"))
	ObserveRunAndWait("timeout", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(runAndWaitTotal.WithLabelValues("timeout")))
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("open")
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("closed")))

	SetCircuitBreakerState("closed")
	assert.Equal(t, 0.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerState.WithLabelValues("closed")))
}

func TestHandlerExposure(t *testing.T) {
	ObserveRequest("POST", 500, time.Millisecond)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `splox_requests_total{method="POST",status_class="5xx"}`))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestServeAndStop(t *testing.T) {
	stop := Serve("127.0.0.1:0", slog.New(slog.DiscardHandler))
	stop()
}

func TestRegisterWithHostRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg), "second Register must be a no-op")

	IncStreamOpened()
	n, err := testutil.GatherAndCount(reg, "splox_streams_opened_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRegisterReportsNameClash(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "splox_streams_opened_total",
		Help: "host counter with the same name",
	}))
	assert.Error(t, Register(reg))
}

func TestInstrumentsStayOffDefaultRegistry(t *testing.T) {
	ObserveRequest("GET", 200, time.Millisecond)
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "splox_requests_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}
