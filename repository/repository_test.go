package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"crm/models"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var base = time.Date(2024, time.October, 17, 12, 0, 0, 0, time.UTC)

func seedSeller(t *testing.T, store Store, name string) models.Seller {
	t.Helper()
	s := models.Seller{Name: name, RegistrationDate: models.NewDateTime(base)}
	require.NoError(t, store.Sellers().Create(context.Background(), &s))
	return s
}

func seedTx(t *testing.T, store Store, sellerID int64, amount string, at time.Time) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		Seller:          &models.Seller{ID: sellerID},
		Amount:          decimal.RequireFromString(amount),
		PaymentType:     models.PaymentTransfer,
		TransactionDate: models.NewDateTime(at),
	}
	require.NoError(t, store.Transactions().Create(context.Background(), &tx))
	return tx
}

func TestMemoryStoreSellers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := seedSeller(t, store, "A")
	b := seedSeller(t, store, "B")
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	b.Name = "B2"
	b.RegistrationDate = models.NewDateTime(base.Add(time.Hour))
	require.NoError(t, store.Sellers().Update(ctx, &b))
	got, err := store.Sellers().FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B2", got.Name)
	assert.True(t, base.Equal(got.RegistrationDate.Time))

	assert.ErrorIs(t, store.Sellers().Update(ctx, &models.Seller{ID: 9}), ErrNotFound)
	_, err = store.Sellers().FindByID(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.Sellers().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryStoreTransactions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	a := seedSeller(t, store, "A")

	tx := seedTx(t, store, a.ID, "10.456", base)
	assert.Equal(t, "10.46", tx.Amount.StringFixed(2))
	require.NotNil(t, tx.Seller)
	assert.Equal(t, "A", tx.Seller.Name)

	err := store.Transactions().Create(ctx, &models.Transaction{Seller: &models.Seller{ID: 5}, Amount: decimal.NewFromInt(1)})
	assert.Equal(t, models.KindDataIntegrity, models.KindOf(err))

	_, err = store.Transactions().FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.Transactions().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Sellers().DeleteWithTransactions(ctx, a.ID))
	n, err = store.Transactions().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, store.Sellers().DeleteWithTransactions(ctx, a.ID), ErrNotFound)
}

func TestMemoryStoreAggregates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	a := seedSeller(t, store, "A")
	b := seedSeller(t, store, "B")
	c := seedSeller(t, store, "C")

	from, to := base.Add(-24*time.Hour), base
	seedTx(t, store, a.ID, "400", from) // window start is inclusive
	seedTx(t, store, a.ID, "100", to)   // window end is inclusive
	seedTx(t, store, b.ID, "500", base.Add(-time.Hour))
	seedTx(t, store, c.ID, "999", from.Add(-time.Second))
	seedTx(t, store, c.ID, "0", base.Add(-time.Hour))

	below, err := store.Transactions().SellersWithTotalBelow(ctx, from, to, decimal.NewFromInt(600))
	require.NoError(t, err)
	require.Len(t, below, 2)
	assert.Equal(t, a.ID, below[0].ID)
	assert.Equal(t, b.ID, below[1].ID)

	top, err := store.Transactions().TopSeller(ctx, from, to)
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, a.ID, top.ID)

	top, err = store.Transactions().TopSeller(ctx, base.AddDate(1, 0, 0), base.AddDate(2, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestClassifyMySQL(t *testing.T) {
	assert.NoError(t, classifyMySQL(nil))
	assert.ErrorIs(t, classifyMySQL(gorm.ErrRecordNotFound), ErrNotFound)
	assert.Equal(t, models.KindDataIntegrity, models.KindOf(classifyMySQL(gorm.ErrForeignKeyViolated)))

	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	err := classifyMySQL(fmt.Errorf("insert: %w", fk))
	assert.Equal(t, models.KindDataIntegrity, models.KindOf(err))
	assert.ErrorIs(t, err, fk)

	other := &mysql.MySQLError{Number: 1045, Message: "Access denied"}
	assert.Equal(t, models.KindUnexpected, models.KindOf(classifyMySQL(other)))

	plain := errors.New("bad connection")
	assert.Same(t, plain, classifyMySQL(plain))
}

func TestClassifyMongo(t *testing.T) {
	assert.NoError(t, classifyMongo(nil))
	assert.ErrorIs(t, classifyMongo(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.Equal(t, models.KindDataIntegrity, models.KindOf(classifyMongo(dup)))

	plain := errors.New("server selection timeout")
	assert.Same(t, plain, classifyMongo(plain))
}

func TestDecimal128Conversion(t *testing.T) {
	for _, s := range []string{"0", "1500", "1500.25", "-3.1", "123456789012345.67"} {
		d := decimal.RequireFromString(s)
		d128, err := decimalTo128(d)
		require.NoError(t, err, s)
		back, err := decimalFrom128(d128)
		require.NoError(t, err, s)
		assert.True(t, d.Equal(back), "%s came back as %s", s, back)
	}

	doc := transactionDoc{ID: 3, SellerID: 1, PaymentType: "CASH", TransactionDate: base}
	doc.Amount, _ = primitive.ParseDecimal128("12.50")
	seller := &models.Seller{ID: 1}
	tx, err := transactionFromDoc(doc, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tx.ID)
	assert.Same(t, seller, tx.Seller)
	assert.Equal(t, "12.5", tx.Amount.String())
	assert.Equal(t, models.PaymentCash, tx.PaymentType)
}

func TestRowMapping(t *testing.T) {
	row := transactionRow{
		ID:              7,
		SellerID:        2,
		Seller:          sellerRow{ID: 2, Name: "Bob", RegistrationDate: base},
		Amount:          decimal.RequireFromString("99.90"),
		PaymentType:     "CARD",
		TransactionDate: base,
	}
	tx := transactionFromRow(row)
	assert.Equal(t, int64(7), tx.ID)
	assert.Equal(t, int64(2), tx.SellerID())
	assert.Equal(t, "Bob", tx.Seller.Name)
	assert.Equal(t, models.PaymentCard, tx.PaymentType)
	assert.True(t, base.Equal(tx.TransactionDate.Time))
}
