package repository

import (
	"context"
	"fmt"
	"time"

	"crm/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mysqlTransactionRepository struct {
	db *gorm.DB
}

type sellerTotal struct {
	SellerID int64
	Total    decimal.Decimal
}

func (r *mysqlTransactionRepository) find(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	var rows []transactionRow
	db := r.db.WithContext(ctx).Preload("Seller").Order("id")
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, classifyMySQL(err)
	}
	txs := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, transactionFromRow(row))
	}
	return txs, nil
}

func (r *mysqlTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	txs, err := r.find(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *mysqlTransactionRepository) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var row transactionRow
	if err := r.db.WithContext(ctx).Preload("Seller").First(&row, id).Error; err != nil {
		return nil, classifyMySQL(err)
	}
	tx := transactionFromRow(row)
	return &tx, nil
}

func (r *mysqlTransactionRepository) FindBySeller(ctx context.Context, sellerID int64) ([]models.Transaction, error) {
	txs, err := r.find(ctx, "seller_id = ?", sellerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions of seller %d: %w", sellerID, err)
	}
	return txs, nil
}

// Create leaves orphan detection to the foreign key.
func (r *mysqlTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	row := transactionRow{
		SellerID:        tx.SellerID(),
		Amount:          tx.Amount.Round(models.AmountScale),
		PaymentType:     string(tx.PaymentType),
		TransactionDate: tx.TransactionDate.Time,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("create transaction: %w", classifyMySQL(err))
	}

	var seller sellerRow
	if err := r.db.WithContext(ctx).First(&seller, row.SellerID).Error; err != nil {
		return fmt.Errorf("load seller %d: %w", row.SellerID, classifyMySQL(err))
	}
	row.Seller = seller
	*tx = transactionFromRow(row)
	return nil
}

func (r *mysqlTransactionRepository) totals(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&transactionRow{}).
		Select("seller_id, SUM(amount) AS total").
		Where("transaction_date BETWEEN ? AND ?", from, to).
		Group("seller_id")
}

func (r *mysqlTransactionRepository) sellersByID(ctx context.Context, ids []int64) ([]models.Seller, error) {
	if len(ids) == 0 {
		return []models.Seller{}, nil
	}
	var rows []sellerRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, classifyMySQL(err)
	}
	sellers := make([]models.Seller, 0, len(rows))
	for _, row := range rows {
		sellers = append(sellers, sellerFromRow(row))
	}
	return sellers, nil
}

func (r *mysqlTransactionRepository) SellersWithTotalBelow(ctx context.Context, from, to time.Time, limit decimal.Decimal) ([]models.Seller, error) {
	var totals []sellerTotal
	err := r.totals(ctx, from, to).
		Having("SUM(amount) > 0 AND SUM(amount) < ?", limit).
		Order("seller_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", classifyMySQL(err))
	}
	ids := make([]int64, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.SellerID)
	}
	sellers, err := r.sellersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	return sellers, nil
}

func (r *mysqlTransactionRepository) TopSeller(ctx context.Context, from, to time.Time) (*models.Seller, error) {
	var totals []sellerTotal
	err := r.totals(ctx, from, to).
		Order("total DESC").
		Order("seller_id ASC").
		Limit(1).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("rank sellers: %w", classifyMySQL(err))
	}
	if len(totals) == 0 {
		return nil, nil
	}
	var row sellerRow
	if err := r.db.WithContext(ctx).First(&row, totals[0].SellerID).Error; err != nil {
		return nil, fmt.Errorf("load seller %d: %w", totals[0].SellerID, classifyMySQL(err))
	}
	seller := sellerFromRow(row)
	return &seller, nil
}

func (r *mysqlTransactionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&transactionRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
