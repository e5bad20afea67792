package service

import (
	"fmt"

	"github.com/trade-board/internal/models"
)

// Div is the guarded division used by every statistics ratio: a zero
// denominator yields 0 instead of NaN or infinity.
func Div(numerator, denominator float64) float64 {
	if denominator != 0 {
		return numerator / denominator
	}
	return 0
}

// ComputeStats derives the performance metrics for one user's logical trade
// sequence. Pure and total: it never fails, holds no state, and an empty
// sequence yields all-zero stats.
func ComputeStats(trades []models.LogicalTrade) models.UserStats {
	var won, lost int
	var profit, loss float64

	for _, trade := range trades {
		if trade.PnL >= 0 {
			won++
			profit += trade.PnL
		} else {
			lost++
			loss += -trade.PnL
		}
	}

	total := won + lost
	avgProfit := Div(profit, float64(won))
	avgLoss := Div(loss, float64(lost))
	winRate := Div(float64(won), float64(total))
	rewardRisk := Div(avgProfit, avgLoss)

	// Expectancy of risking 1 unit per trade. Only meaningful once at
	// least one trade exists.
	edge := 0.0
	if total > 0 {
		edge = winRate*rewardRisk - (1-winRate)*1
	}

	balance := profit - loss

	return models.UserStats{
		Trades:       total,
		Won:          won,
		Lost:         lost,
		AvgProfit:    avgProfit,
		AvgLoss:      avgLoss,
		WinRate:      winRate,
		RewardRisk:   rewardRisk,
		Edge:         edge,
		Balance:      balance,
		PnLPerTrade:  Div(balance, float64(total)),
		MaturityDays: maturityDays(trades),
	}
}

// maturityDays counts the distinct local calendar dates on which the user
// closed at least one trade.
func maturityDays(trades []models.LogicalTrade) int {
	days := make(map[string]bool, len(trades))
	for _, trade := range trades {
		end := trade.EndDate.Local()
		days[fmt.Sprintf("%d-%d-%d", end.Year(), end.Month(), end.Day())] = true
	}
	return len(days)
}
