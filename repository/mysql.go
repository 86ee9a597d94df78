package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm/models"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sellerRow struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	Name             string    `gorm:"size:255"`
	ContactInfo      string    `gorm:"size:255"`
	RegistrationDate time.Time `gorm:"type:datetime(6)"`
}

func (sellerRow) TableName() string {
	return "seller"
}

type transactionRow struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	SellerID        int64           `gorm:"not null;index"`
	Seller          sellerRow       `gorm:"foreignKey:SellerID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT;"`
	Amount          decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	PaymentType     string          `gorm:"size:16;not null"`
	TransactionDate time.Time       `gorm:"type:datetime(6);index"`
}

func (transactionRow) TableName() string {
	return "transaction"
}

func sellerFromRow(r sellerRow) models.Seller {
	return models.Seller{
		ID:               r.ID,
		Name:             r.Name,
		ContactInfo:      r.ContactInfo,
		RegistrationDate: models.NewDateTime(r.RegistrationDate),
	}
}

func transactionFromRow(r transactionRow) models.Transaction {
	seller := sellerFromRow(r.Seller)
	return models.Transaction{
		ID:              r.ID,
		Seller:          &seller,
		Amount:          r.Amount,
		PaymentType:     models.PaymentType(r.PaymentType),
		TransactionDate: models.NewDateTime(r.TransactionDate),
	}
}

// MySQLStore keeps sellers and transactions in two tables linked by a
// foreign key.
type MySQLStore struct {
	db           *gorm.DB
	sellers      *mysqlSellerRepository
	transactions *mysqlTransactionRepository
}

func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{
		db:           db,
		sellers:      &mysqlSellerRepository{db: db},
		transactions: &mysqlTransactionRepository{db: db},
	}
}

func (s *MySQLStore) Sellers() SellerRepository           { return s.sellers }
func (s *MySQLStore) Transactions() TransactionRepository { return s.transactions }

func (s *MySQLStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&sellerRow{}, &transactionRow{}); err != nil {
		return fmt.Errorf("migrate mysql schema: %w", err)
	}
	return nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *MySQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MySQL server error numbers that mean a constraint rejected the write.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1216: true, // child row: foreign key fails (old servers)
	1217: true, // parent row: foreign key fails (old servers)
	1451: true, // cannot delete or update a parent row
	1452: true, // cannot add or update a child row
	3819: true, // check constraint violated
}

func classifyMySQL(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return integrityError(err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && mysqlConstraintErrors[myErr.Number] {
		return integrityError(err)
	}
	return err
}
