package services

import "crm/models"

// bucketCounts counts transactions per bucket start date.
type bucketCounts map[models.Date]int

// best returns the bucket with the highest count. On equal counts the
// earliest bucket wins, so the result does not depend on map order.
func (b bucketCounts) best() (*models.Date, int) {
	var (
		bestKey   models.Date
		bestCount int
	)
	for key, count := range b {
		if count > bestCount || (count == bestCount && key.Before(bestKey.Time)) {
			bestKey, bestCount = key, count
		}
	}
	if bestCount == 0 {
		return nil, 0
	}
	return &bestKey, bestCount
}

// ComputeBestPeriod groups transactions by calendar day, Monday-based week
// and month in models.Zone and picks the busiest bucket of each.
func ComputeBestPeriod(txs []models.Transaction) models.BestPeriod {
	daily := make(bucketCounts)
	weekly := make(bucketCounts)
	monthly := make(bucketCounts)

	for _, tx := range txs {
		day := models.DateOf(tx.TransactionDate.Time)
		daily[day]++
		weekly[day.WeekStart()]++
		monthly[day.MonthStart()]++
	}

	var result models.BestPeriod

	result.BestDay, result.MaxDailyTransactions = daily.best()

	if start, count := weekly.best(); start != nil {
		end := start.AddDays(6)
		result.BestWeekStart, result.BestWeekEnd, result.MaxWeeklyTransactions = start, &end, count
	}

	if start, count := monthly.best(); start != nil {
		end := start.MonthEnd()
		result.BestMonthStart, result.BestMonthEnd, result.MaxMonthlyTransactions = start, &end, count
	}

	return result
}
