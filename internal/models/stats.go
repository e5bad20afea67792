package models

import "time"

// UserStats holds the derived performance metrics for one user. It is a pure
// function of the user's logical trade sequence and is recomputed from
// scratch on every refresh, never mutated incrementally.
type UserStats struct {
	Trades       int     `json:"trades"`
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	AvgProfit    float64 `json:"avg_profit"`
	AvgLoss      float64 `json:"avg_loss"`
	WinRate      float64 `json:"win_rate"`
	RewardRisk   float64 `json:"reward_risk"`
	Edge         float64 `json:"edge"`
	Balance      float64 `json:"balance"`
	PnLPerTrade  float64 `json:"pnl_per_trade"`
	MaturityDays int     `json:"maturity_days"`
}

// StatsRow is one row of the per-user leaderboard table. AccountTypes carries
// the first letter of each share's account type, the way the dashboard
// renders the Type column.
type StatsRow struct {
	User         string `json:"user"`
	AccountTypes string `json:"account_types"`
	UserStats
}

// StatsSnapshot is a persisted leaderboard computation for one board.
type StatsSnapshot struct {
	ID        string     `json:"id"`
	Board     string     `json:"board"`
	TakenAt   time.Time  `json:"taken_at"`
	Rows      []StatsRow `json:"rows"`
	CreatedAt time.Time  `json:"created_at"`
}
