package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process store for local runs and tests. It enforces
// the same seller reference rule as the MySQL foreign key.
type MemoryStore struct {
	mu           sync.RWMutex
	sellers      map[int64]models.Seller
	transactions map[int64]models.Transaction
	lastSeller   int64
	lastTx       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sellers:      make(map[int64]models.Seller),
		transactions: make(map[int64]models.Transaction),
	}
}

func (s *MemoryStore) Sellers() SellerRepository           { return memorySellers{s} }
func (s *MemoryStore) Transactions() TransactionRepository { return memoryTransactions{s} }

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Ping(context.Context) error    { return nil }
func (s *MemoryStore) Close(context.Context) error   { return nil }

// withSeller returns tx with a copy of its current seller attached.
func (s *MemoryStore) withSeller(tx models.Transaction) models.Transaction {
	seller := s.sellers[tx.SellerID()]
	tx.Seller = &seller
	return tx
}

func (s *MemoryStore) sortedTransactions(keep func(models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if keep == nil || keep(tx) {
			out = append(out, s.withSeller(tx))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) totals(from, to time.Time) map[int64]decimal.Decimal {
	sums := make(map[int64]decimal.Decimal)
	for _, tx := range s.transactions {
		at := tx.TransactionDate.Time
		if at.Before(from) || at.After(to) {
			continue
		}
		sums[tx.SellerID()] = sums[tx.SellerID()].Add(tx.Amount)
	}
	return sums
}

type memorySellers struct{ s *MemoryStore }

func (r memorySellers) FindAll(context.Context) ([]models.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Seller, 0, len(r.s.sellers))
	for _, seller := range r.s.sellers {
		out = append(out, seller)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memorySellers) FindByID(_ context.Context, id int64) (*models.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seller, ok := r.s.sellers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &seller, nil
}

func (r memorySellers) Create(_ context.Context, seller *models.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastSeller++
	seller.ID = r.s.lastSeller
	r.s.sellers[seller.ID] = *seller
	return nil
}

func (r memorySellers) Update(_ context.Context, seller *models.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.sellers[seller.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = seller.Name
	stored.ContactInfo = seller.ContactInfo
	r.s.sellers[seller.ID] = stored
	return nil
}

func (r memorySellers) DeleteWithTransactions(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sellers[id]; !ok {
		return ErrNotFound
	}
	for txID, tx := range r.s.transactions {
		if tx.SellerID() == id {
			delete(r.s.transactions, txID)
		}
	}
	delete(r.s.sellers, id)
	return nil
}

func (r memorySellers) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.sellers)), nil
}

type memoryTransactions struct{ s *MemoryStore }

func (r memoryTransactions) FindAll(context.Context) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedTransactions(nil), nil
}

func (r memoryTransactions) FindByID(_ context.Context, id int64) (*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	tx = r.s.withSeller(tx)
	return &tx, nil
}

func (r memoryTransactions) FindBySeller(_ context.Context, sellerID int64) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedTransactions(func(tx models.Transaction) bool {
		return tx.SellerID() == sellerID
	}), nil
}

func (r memoryTransactions) Create(_ context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sellerID := tx.SellerID()
	if _, ok := r.s.sellers[sellerID]; !ok {
		return orphanError(sellerID)
	}
	r.s.lastTx++
	stored := models.Transaction{
		ID:              r.s.lastTx,
		Seller:          &models.Seller{ID: sellerID},
		Amount:          tx.Amount.Round(models.AmountScale),
		PaymentType:     tx.PaymentType,
		TransactionDate: tx.TransactionDate,
	}
	r.s.transactions[stored.ID] = stored
	*tx = r.s.withSeller(stored)
	return nil
}

func (r memoryTransactions) SellersWithTotalBelow(_ context.Context, from, to time.Time, limit decimal.Decimal) ([]models.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Seller, 0)
	for sellerID, total := range r.s.totals(from, to) {
		if total.IsPositive() && total.LessThan(limit) {
			out = append(out, r.s.sellers[sellerID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryTransactions) TopSeller(_ context.Context, from, to time.Time) (*models.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		bestID    int64
		bestTotal decimal.Decimal
		found     bool
	)
	for sellerID, total := range r.s.totals(from, to) {
		if !found || total.GreaterThan(bestTotal) || (total.Equal(bestTotal) && sellerID < bestID) {
			bestID, bestTotal, found = sellerID, total, true
		}
	}
	if !found {
		return nil, nil
	}
	seller := r.s.sellers[bestID]
	return &seller, nil
}

func (r memoryTransactions) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.transactions)), nil
}
