package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTransactionRepository struct {
	store *MongoStore
}

func (r *mongoTransactionRepository) find(ctx context.Context, filter bson.M) ([]models.Transaction, error) {
	cursor, err := r.store.txColl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(docs))
	seen := make(map[int64]bool)
	for _, d := range docs {
		if !seen[d.SellerID] {
			seen[d.SellerID] = true
			ids = append(ids, d.SellerID)
		}
	}
	sellers, err := r.store.sellersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := transactionFromDoc(d, sellers[d.SellerID])
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *mongoTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	txs, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *mongoTransactionRepository) FindByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var doc transactionDoc
	if err := r.store.txColl.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, classifyMongo(err)
	}
	seller, err := r.store.findSeller(ctx, doc.SellerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load seller %d: %w", doc.SellerID, err)
	}
	tx, err := transactionFromDoc(doc, seller)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *mongoTransactionRepository) FindBySeller(ctx context.Context, sellerID int64) ([]models.Transaction, error) {
	txs, err := r.find(ctx, bson.M{"seller_id": sellerID})
	if err != nil {
		return nil, fmt.Errorf("list transactions of seller %d: %w", sellerID, err)
	}
	return txs, nil
}

// Create claims the seller document and inserts the transaction in one
// session transaction. Bumping the seller's version makes a concurrent
// DeleteWithTransactions conflict with the insert, so the reference cannot
// be orphaned between check and write.
func (r *mongoTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	sellerID := tx.SellerID()
	amount, err := decimalTo128(tx.Amount.Round(models.AmountScale))
	if err != nil {
		return models.InvalidArgument("Invalid amount: %s", tx.Amount)
	}
	id, err := r.store.nextID(ctx, "transaction")
	if err != nil {
		return err
	}
	doc := transactionDoc{
		ID:              id,
		SellerID:        sellerID,
		Amount:          amount,
		PaymentType:     string(tx.PaymentType),
		TransactionDate: tx.TransactionDate.Time,
	}

	session, err := r.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var sellerDocument sellerDoc
		err := r.store.sellerColl.FindOneAndUpdate(sc,
			bson.M{"_id": sellerID},
			bson.M{"$inc": bson.M{"version": int64(1)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&sellerDocument)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orphanError(sellerID)
		}
		if err != nil {
			return nil, fmt.Errorf("claim seller %d: %w", sellerID, err)
		}
		if _, err := r.store.txColl.InsertOne(sc, doc); err != nil {
			return nil, fmt.Errorf("create transaction: %w", classifyMongo(err))
		}
		seller := sellerFromDoc(sellerDocument)
		return &seller, nil
	})
	if err != nil {
		return err
	}

	created, err := transactionFromDoc(doc, res.(*models.Seller))
	if err != nil {
		return err
	}
	*tx = created
	return nil
}

type sellerTotalDoc struct {
	SellerID int64                `bson:"_id"`
	Total    primitive.Decimal128 `bson:"total"`
}

func totalsPipeline(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"transaction_date": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{"_id": "$seller_id", "total": bson.M{"$sum": "$amount"}}}},
	}
}

func (r *mongoTransactionRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]sellerTotalDoc, error) {
	cursor, err := r.store.txColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var totals []sellerTotalDoc
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *mongoTransactionRepository) SellersWithTotalBelow(ctx context.Context, from, to time.Time, limit decimal.Decimal) ([]models.Seller, error) {
	limit128, err := decimalTo128(limit)
	if err != nil {
		return nil, models.InvalidArgument("Invalid amount: %s", limit)
	}
	pipeline := append(totalsPipeline(from, to),
		bson.D{{Key: "$match", Value: bson.M{"total": bson.M{"$gt": 0, "$lt": limit128}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	)
	totals, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	ids := make([]int64, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.SellerID)
	}
	byID, err := r.store.sellersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	sellers := make([]models.Seller, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			sellers = append(sellers, *s)
		}
	}
	return sellers, nil
}

func (r *mongoTransactionRepository) TopSeller(ctx context.Context, from, to time.Time) (*models.Seller, error) {
	pipeline := append(totalsPipeline(from, to),
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: 1}},
	)
	totals, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("rank sellers: %w", err)
	}
	if len(totals) == 0 {
		return nil, nil
	}
	seller, err := r.store.findSeller(ctx, totals[0].SellerID)
	if err != nil {
		return nil, fmt.Errorf("load seller %d: %w", totals[0].SellerID, err)
	}
	return seller, nil
}

func (r *mongoTransactionRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.store.txColl.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
