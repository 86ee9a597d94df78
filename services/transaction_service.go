package services

import (
	"context"
	"errors"
	"time"

	"crm/logger"
	"crm/models"
	"crm/repository"

	"github.com/sirupsen/logrus"
)

type TransactionService struct {
	sellers      repository.SellerRepository
	transactions repository.TransactionRepository
	now          Clock
}

func NewTransactionService(store repository.Store, now Clock) *TransactionService {
	if now == nil {
		now = time.Now
	}
	return &TransactionService{
		sellers:      store.Sellers(),
		transactions: store.Transactions(),
		now:          now,
	}
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions.FindAll(ctx)
}

// CreateTransaction does not look the seller up first; the store rejects
// references to missing sellers.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if tx.SellerID() == 0 {
		return nil, models.DataIntegrity(nil, "Data integrity violation: seller is required")
	}
	paymentType, err := models.ParsePaymentType(string(tx.PaymentType))
	if err != nil {
		return nil, err
	}
	tx.ID = 0
	tx.PaymentType = paymentType
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = models.NewDateTime(s.now())
	}
	if err := s.transactions.Create(ctx, &tx); err != nil {
		return nil, err
	}
	logger.L().WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"seller_id":      tx.SellerID(),
		"amount":         tx.Amount.String(),
	}).Info("transaction created")
	return &tx, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.TransactionNotFound(id)
	}
	return tx, err
}

func (s *TransactionService) ListBySeller(ctx context.Context, sellerID int64) ([]models.Transaction, error) {
	if _, err := s.sellers.FindByID(ctx, sellerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.SellerNotFound(sellerID)
		}
		return nil, err
	}
	return s.transactions.FindBySeller(ctx, sellerID)
}
