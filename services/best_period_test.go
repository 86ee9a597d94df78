package services

import (
	"testing"
	"time"

	"crm/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txAt(ts string) models.Transaction {
	at, err := models.ParseDateTime(ts)
	if err != nil {
		panic(err)
	}
	return models.Transaction{TransactionDate: at}
}

func date(y int, m time.Month, d int) *models.Date {
	v := models.NewDate(y, m, d)
	return &v
}

func TestComputeBestPeriodEmpty(t *testing.T) {
	best := ComputeBestPeriod(nil)

	assert.Nil(t, best.BestDay)
	assert.Nil(t, best.BestWeekStart)
	assert.Nil(t, best.BestWeekEnd)
	assert.Nil(t, best.BestMonthStart)
	assert.Nil(t, best.BestMonthEnd)
	assert.Zero(t, best.MaxDailyTransactions)
	assert.Zero(t, best.MaxWeeklyTransactions)
	assert.Zero(t, best.MaxMonthlyTransactions)
}

func TestComputeBestPeriodSingleTransaction(t *testing.T) {
	best := ComputeBestPeriod([]models.Transaction{txAt("2024-10-17T10:00:00")})

	assert.Equal(t, date(2024, time.October, 17), best.BestDay)
	assert.Equal(t, 1, best.MaxDailyTransactions)
	assert.Equal(t, date(2024, time.October, 14), best.BestWeekStart)
	assert.Equal(t, date(2024, time.October, 20), best.BestWeekEnd)
	assert.Equal(t, 1, best.MaxWeeklyTransactions)
	assert.Equal(t, date(2024, time.October, 1), best.BestMonthStart)
	assert.Equal(t, date(2024, time.October, 31), best.BestMonthEnd)
	assert.Equal(t, 1, best.MaxMonthlyTransactions)
}

func TestComputeBestPeriodPicksBusiestBuckets(t *testing.T) {
	txs := []models.Transaction{
		// week of Sep 30, split over two months
		txAt("2024-09-30T09:00:00"),
		txAt("2024-10-01T09:00:00"),
		txAt("2024-10-01T18:00:00"),
		txAt("2024-10-02T09:00:00"),
		// week of Oct 14
		txAt("2024-10-15T09:00:00"),
		txAt("2024-10-15T11:00:00"),
		txAt("2024-10-15T13:00:00"),
		// November
		txAt("2024-11-05T09:00:00"),
	}

	best := ComputeBestPeriod(txs)

	assert.Equal(t, date(2024, time.October, 15), best.BestDay)
	assert.Equal(t, 3, best.MaxDailyTransactions)
	assert.Equal(t, date(2024, time.September, 30), best.BestWeekStart)
	assert.Equal(t, date(2024, time.October, 6), best.BestWeekEnd)
	assert.Equal(t, 4, best.MaxWeeklyTransactions)
	assert.Equal(t, date(2024, time.October, 1), best.BestMonthStart)
	assert.Equal(t, date(2024, time.October, 31), best.BestMonthEnd)
	assert.Equal(t, 6, best.MaxMonthlyTransactions)
}

func TestComputeBestPeriodTieGoesToEarliest(t *testing.T) {
	txs := []models.Transaction{
		txAt("2024-12-20T10:00:00"),
		txAt("2024-03-04T10:00:00"),
		txAt("2024-07-09T10:00:00"),
	}

	// map iteration order varies, so repeat
	for i := 0; i < 20; i++ {
		best := ComputeBestPeriod(txs)
		require.Equal(t, date(2024, time.March, 4), best.BestDay)
		require.Equal(t, date(2024, time.March, 4), best.BestWeekStart)
		require.Equal(t, date(2024, time.March, 1), best.BestMonthStart)
		require.Equal(t, date(2024, time.March, 31), best.BestMonthEnd)
	}
}

func TestComputeBestPeriodUsesZone(t *testing.T) {
	prev := models.Zone
	t.Cleanup(func() { models.Zone = prev })
	models.SetZone(time.FixedZone("UTC+5", 5*3600))

	// 21:00 UTC on Sunday Oct 20 is already Monday Oct 21 at UTC+5
	at := models.NewDateTime(time.Date(2024, time.October, 20, 21, 0, 0, 0, time.UTC))
	best := ComputeBestPeriod([]models.Transaction{{TransactionDate: at}})

	assert.Equal(t, date(2024, time.October, 21), best.BestDay)
	assert.Equal(t, date(2024, time.October, 21), best.BestWeekStart)
}
