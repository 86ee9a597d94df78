package utils

import (
	"context"
	"fmt"
	"time"

	"crm/logger"
	"crm/repository"

	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	StoredSellers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_sellers",
		Help: "Number of stored sellers",
	})

	StoredTransactions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_transactions",
		Help: "Number of stored transactions",
	})
)

const statsTimeout = 10 * time.Second

// RefreshStoreStats counts sellers and transactions and publishes them to
// the store gauges.
func RefreshStoreStats(ctx context.Context, store repository.Store) error {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	sellers, err := store.Sellers().Count(ctx)
	if err != nil {
		return fmt.Errorf("count sellers: %w", err)
	}
	transactions, err := store.Transactions().Count(ctx)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}

	StoredSellers.Set(float64(sellers))
	StoredTransactions.Set(float64(transactions))

	logger.L().WithFields(logrus.Fields{
		"sellers":      sellers,
		"transactions": transactions,
	}).Debug("store stats refreshed")
	return nil
}

// StartStatsScheduler runs RefreshStoreStats every interval. The caller
// stops the returned scheduler.
func StartStatsScheduler(loc *time.Location, interval time.Duration, store repository.Store) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(loc)
	_, err := s.Every(interval).Do(func() {
		if err := RefreshStoreStats(context.Background(), store); err != nil {
			logger.L().WithError(err).Warn("refreshing store stats failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule store stats: %w", err)
	}
	s.StartAsync()
	return s, nil
}
