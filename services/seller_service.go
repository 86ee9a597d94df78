package services

import (
	"context"
	"errors"
	"time"

	"crm/logger"
	"crm/models"
	"crm/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

type SellerService struct {
	sellers      repository.SellerRepository
	transactions repository.TransactionRepository
	now          Clock
}

func NewSellerService(store repository.Store, now Clock) *SellerService {
	if now == nil {
		now = time.Now
	}
	return &SellerService{
		sellers:      store.Sellers(),
		transactions: store.Transactions(),
		now:          now,
	}
}

func (s *SellerService) ListSellers(ctx context.Context) ([]models.Seller, error) {
	return s.sellers.FindAll(ctx)
}

// CreateSeller ignores any client-supplied id.
func (s *SellerService) CreateSeller(ctx context.Context, seller models.Seller) (*models.Seller, error) {
	seller.ID = 0
	if seller.RegistrationDate.IsZero() {
		seller.RegistrationDate = models.NewDateTime(s.now())
	}
	if err := s.sellers.Create(ctx, &seller); err != nil {
		return nil, err
	}
	logger.L().WithField("seller_id", seller.ID).Info("seller created")
	return &seller, nil
}

func (s *SellerService) GetSeller(ctx context.Context, id int64) (*models.Seller, error) {
	seller, err := s.sellers.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.SellerNotFound(id)
	}
	return seller, err
}

// UpdateSeller overwrites name and contact info; id and registration date
// stay as stored.
func (s *SellerService) UpdateSeller(ctx context.Context, id int64, details models.SellerDetails) (*models.Seller, error) {
	seller, err := s.GetSeller(ctx, id)
	if err != nil {
		return nil, err
	}
	seller.Name = details.Name
	seller.ContactInfo = details.ContactInfo
	if err := s.sellers.Update(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.SellerNotFound(id)
		}
		return nil, err
	}
	return seller, nil
}

// DeleteSeller removes the seller together with all of its transactions.
func (s *SellerService) DeleteSeller(ctx context.Context, id int64) error {
	if _, err := s.GetSeller(ctx, id); err != nil {
		return err
	}
	if err := s.sellers.DeleteWithTransactions(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.SellerNotFound(id)
		}
		return err
	}
	logger.L().WithField("seller_id", id).Info("seller deleted with its transactions")
	return nil
}

// BestTransactionPeriod looks at the seller's full transaction history.
func (s *SellerService) BestTransactionPeriod(ctx context.Context, sellerID int64) (*models.BestPeriod, error) {
	if _, err := s.GetSeller(ctx, sellerID); err != nil {
		return nil, err
	}
	txs, err := s.transactions.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	best := ComputeBestPeriod(txs)
	return &best, nil
}

// SellersUnderAmount returns sellers whose total in the trailing period is
// above zero and below amount.
func (s *SellerService) SellersUnderAmount(ctx context.Context, amount decimal.Decimal, period string) ([]models.Seller, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	now := s.now()
	from := p.Start(now)
	logger.L().WithFields(logrus.Fields{
		"amount": amount.String(),
		"from":   from,
		"to":     now,
	}).Debug("filtering sellers by amount")
	return s.transactions.SellersWithTotalBelow(ctx, from, now, amount)
}

// TopSellerByPeriod returns nil without error when nothing was sold in the
// period.
func (s *SellerService) TopSellerByPeriod(ctx context.Context, period string) (*models.Seller, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return s.transactions.TopSeller(ctx, p.Start(now), now)
}
