package domain

// UserBalance is the account balance.
type UserBalance struct {
	BalanceMicrodollars int64   `json:"balance_microdollars"`
	BalanceUSD          float64 `json:"balance_usd"`
	Currency            string  `json:"currency"`
}

type BalanceTransaction struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	Amount                int64          `json:"amount"`
	Currency              string         `json:"currency"`
	Type                  string         `json:"type"`
	Status                string         `json:"status"`
	CreatedAt             string         `json:"created_at"`
	UpdatedAt             string         `json:"updated_at"`
	Description           string         `json:"description,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
	StripePaymentIntentID string         `json:"stripe_payment_intent_id,omitempty"`
	StripeChargeID        string         `json:"stripe_charge_id,omitempty"`
}

// TransactionPagination is page-number based, unlike the cursor listings.
type TransactionPagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type TransactionHistoryResponse struct {
	Transactions []BalanceTransaction  `json:"transactions"`
	Pagination   TransactionPagination `json:"pagination"`
}

// TransactionFilter narrows a transaction history query. Types and Statuses
// are comma-separated lists; dates are YYYY-MM-DD.
type TransactionFilter struct {
	Page      int
	Limit     int
	Types     string
	Statuses  string
	StartDate string
	EndDate   string
	MinAmount *float64
	MaxAmount *float64
	Search    string
}

type ActivityStats struct {
	Balance           float64 `json:"balance"`
	TotalRequests     int64   `json:"total_requests"`
	TotalSpending     float64 `json:"total_spending"`
	AvgCostPerRequest float64 `json:"avg_cost_per_request"`
	InputTokens       int64   `json:"input_tokens"`
	OutputTokens      int64   `json:"output_tokens"`
	TotalTokens       int64   `json:"total_tokens"`
}

type DailyActivity struct {
	Date         string  `json:"date"`
	TotalCost    float64 `json:"total_cost"`
	RequestCount int64   `json:"request_count"`
	NodeCount    int64   `json:"node_count"`
}

type DailyActivityResponse struct {
	Data []DailyActivity `json:"data"`
	Days int             `json:"days"`
}
