package models

// BestPeriod summarises the busiest day, week and month of one seller by
// transaction count. Dates are nil when the seller has no transactions.
type BestPeriod struct {
	BestDay              *Date `json:"bestDay"`
	MaxDailyTransactions int   `json:"maxDailyTransactions"`

	BestWeekStart         *Date `json:"bestWeekStart"`
	BestWeekEnd           *Date `json:"bestWeekEnd"`
	MaxWeeklyTransactions int   `json:"maxWeeklyTransactions"`

	BestMonthStart         *Date `json:"bestMonthStart"`
	BestMonthEnd           *Date `json:"bestMonthEnd"`
	MaxMonthlyTransactions int   `json:"maxMonthlyTransactions"`
}
