package splox

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const defaultActivityDays = 30

// BillingService reads balance, transactions, and usage statistics.
type BillingService struct {
	c *Client
}

func (s *BillingService) GetBalance(ctx context.Context) (*UserBalance, error) {
	var out UserBalance
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/billing/balance", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionHistory returns one page of transactions. A nil filter
// requests page 1 with 20 items.
func (s *BillingService) GetTransactionHistory(ctx context.Context, filter *TransactionFilter) (*TransactionHistoryResponse, error) {
	var out TransactionHistoryResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/billing/transactions", transactionQuery(filter), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func transactionQuery(f *TransactionFilter) url.Values {
	page, limit := 1, defaultListLimit
	if f != nil && f.Page > 0 {
		page = f.Page
	}
	if f != nil && f.Limit > 0 {
		limit = f.Limit
	}
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if f == nil {
		return q
	}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set("types", f.Types)
	set("statuses", f.Statuses)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	set("search", f.Search)
	if f.MinAmount != nil {
		q.Set("min_amount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		q.Set("max_amount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	return q
}

// GetActivityStats returns lifetime usage totals.
func (s *BillingService) GetActivityStats(ctx context.Context) (*ActivityStats, error) {
	var out ActivityStats
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/activity/stats", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDailyActivity returns per-day spending for the last days days
// (30 when days <= 0).
func (s *BillingService) GetDailyActivity(ctx context.Context, days int) (*DailyActivityResponse, error) {
	if days <= 0 {
		days = defaultActivityDays
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	var out DailyActivityResponse
	if err := s.c.t.DoJSON(ctx, http.MethodGet, "/activity/daily", q, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}
