package dto

import "github.com/shopspring/decimal"

// MetricsResponse is the uncached read model over businesses and the
// activity log. MRR is in major units.
type MetricsResponse struct {
	MRR                decimal.Decimal `json:"mrr"`
	TotalBusinesses    int64           `json:"total_businesses"`
	ActiveBusinesses   int64           `json:"active_businesses"`
	NewThisMonth       int64           `json:"new_this_month"`
	CancellationsCount int64           `json:"cancellations_count"`
}
