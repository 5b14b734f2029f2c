package splox

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/billing/balance", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"balance_usd": 1.5, "currency": "USD"})
	})
	c := newTestClient(t, mux)

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))

	_, err := c.Billing.GetBalance(context.Background())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "splox_requests_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestImportDoesNotTouchDefaultRegistry(t *testing.T) {
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "splox_requests_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}
