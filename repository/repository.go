// Package repository persists sellers and transactions. Three backends share
// the same contract: MySQL through GORM, MongoDB, and an in-process store.
package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"crm/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

type SellerRepository interface {
	FindAll(ctx context.Context) ([]models.Seller, error)
	FindByID(ctx context.Context, id int64) (*models.Seller, error)
	// Create assigns seller.ID.
	Create(ctx context.Context, seller *models.Seller) error
	// Update writes name and contact info only.
	Update(ctx context.Context, seller *models.Seller) error
	// DeleteWithTransactions removes the seller's transactions and then the
	// seller in one unit of work.
	DeleteWithTransactions(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type TransactionRepository interface {
	FindAll(ctx context.Context) ([]models.Transaction, error)
	FindByID(ctx context.Context, id int64) (*models.Transaction, error)
	FindBySeller(ctx context.Context, sellerID int64) ([]models.Transaction, error)
	// Create assigns tx.ID and fills tx.Seller. A reference to a missing
	// seller fails with a DataIntegrity error.
	Create(ctx context.Context, tx *models.Transaction) error
	// SellersWithTotalBelow returns sellers whose summed amount in [from, to]
	// is > 0 and < limit, ordered by id.
	SellersWithTotalBelow(ctx context.Context, from, to time.Time, limit decimal.Decimal) ([]models.Seller, error)
	// TopSeller returns the seller with the highest summed amount in
	// [from, to], lowest id first on ties, or nil when the window is empty.
	TopSeller(ctx context.Context, from, to time.Time) (*models.Seller, error)
	Count(ctx context.Context) (int64, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Sellers() SellerRepository
	Transactions() TransactionRepository
	// Migrate creates tables or indexes.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func integrityError(err error) error {
	return models.DataIntegrity(err, "Data integrity violation: "+err.Error())
}

func orphanError(sellerID int64) error {
	return models.DataIntegrity(nil, "Data integrity violation: seller "+strconv.FormatInt(sellerID, 10)+" does not exist")
}
