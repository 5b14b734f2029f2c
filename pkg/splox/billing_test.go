package splox

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionQuery(t *testing.T) {
	lo, hi := 1.5, 100.0
	tests := []struct {
		name   string
		filter *TransactionFilter
		want   url.Values
	}{
		{"nil filter", nil, url.Values{"page": {"1"}, "limit": {"20"}}},
		{"zero filter", &TransactionFilter{}, url.Values{"page": {"1"}, "limit": {"20"}}},
		{
			name: "all fields",
			filter: &TransactionFilter{
				Page: 2, Limit: 50, Types: "credit,debit", Statuses: "completed",
				StartDate: "2026-01-01", EndDate: "2026-02-01",
				MinAmount: &lo, MaxAmount: &hi, Search: "topup",
			},
			want: url.Values{
				"page": {"2"}, "limit": {"50"}, "types": {"credit,debit"},
				"statuses": {"completed"}, "start_date": {"2026-01-01"},
				"end_date": {"2026-02-01"}, "min_amount": {"1.5"},
				"max_amount": {"100"}, "search": {"topup"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transactionQuery(tt.filter))
		})
	}
}

func TestBillingEndpoints(t *testing.T) {
	var dailyQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/billing/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"transactions": []map[string]any{{"id": "t1", "amount": 500, "type": "credit"}},
			"pagination":   map[string]any{"page": 1, "limit": 20, "total_count": 1, "total_pages": 1},
		})
	})
	mux.HandleFunc("GET /api/v1/activity/daily", func(w http.ResponseWriter, r *http.Request) {
		dailyQuery = r.URL.RawQuery
		writeJSON(w, map[string]any{"data": []map[string]any{{"date": "2026-01-01", "total_cost": 0.25}}, "days": 30})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	hist, err := c.Billing.GetTransactionHistory(ctx, nil)
	require.NoError(t, err)
	require.Len(t, hist.Transactions, 1)
	assert.EqualValues(t, 500, hist.Transactions[0].Amount)
	assert.Equal(t, 1, hist.Pagination.TotalPages)

	daily, err := c.Billing.GetDailyActivity(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "days=30", dailyQuery)
	assert.Equal(t, 30, daily.Days)
	assert.Equal(t, 0.25, daily.Data[0].TotalCost)
}
