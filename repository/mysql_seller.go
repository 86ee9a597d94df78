package repository

import (
	"context"
	"fmt"

	"crm/models"

	"gorm.io/gorm"
)

type mysqlSellerRepository struct {
	db *gorm.DB
}

func (r *mysqlSellerRepository) FindAll(ctx context.Context) ([]models.Seller, error) {
	var rows []sellerRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list sellers: %w", classifyMySQL(err))
	}
	sellers := make([]models.Seller, 0, len(rows))
	for _, row := range rows {
		sellers = append(sellers, sellerFromRow(row))
	}
	return sellers, nil
}

func (r *mysqlSellerRepository) FindByID(ctx context.Context, id int64) (*models.Seller, error) {
	var row sellerRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, classifyMySQL(err)
	}
	seller := sellerFromRow(row)
	return &seller, nil
}

func (r *mysqlSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	row := sellerRow{
		Name:             seller.Name,
		ContactInfo:      seller.ContactInfo,
		RegistrationDate: seller.RegistrationDate.Time,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create seller: %w", classifyMySQL(err))
	}
	seller.ID = row.ID
	return nil
}

func (r *mysqlSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	res := r.db.WithContext(ctx).Model(&sellerRow{ID: seller.ID}).Updates(map[string]any{
		"name":         seller.Name,
		"contact_info": seller.ContactInfo,
	})
	if res.Error != nil {
		return fmt.Errorf("update seller %d: %w", seller.ID, classifyMySQL(res.Error))
	}
	return nil
}

func (r *mysqlSellerRepository) DeleteWithTransactions(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seller_id = ?", id).Delete(&transactionRow{}).Error; err != nil {
			return fmt.Errorf("delete transactions of seller %d: %w", id, classifyMySQL(err))
		}
		res := tx.Delete(&sellerRow{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete seller %d: %w", id, classifyMySQL(res.Error))
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *mysqlSellerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&sellerRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sellers: %w", err)
	}
	return n, nil
}
