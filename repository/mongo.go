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

type sellerDoc struct {
	ID               int64     `bson:"_id"`
	Name             string    `bson:"name"`
	ContactInfo      string    `bson:"contact_info"`
	RegistrationDate time.Time `bson:"registration_date"`
	// Version is bumped by every transaction insert that references the
	// seller.
	Version int64 `bson:"version,omitempty"`
}

type transactionDoc struct {
	ID              int64                `bson:"_id"`
	SellerID        int64                `bson:"seller_id"`
	Amount          primitive.Decimal128 `bson:"amount"`
	PaymentType     string               `bson:"payment_type"`
	TransactionDate time.Time            `bson:"transaction_date"`
}

func sellerFromDoc(d sellerDoc) models.Seller {
	return models.Seller{
		ID:               d.ID,
		Name:             d.Name,
		ContactInfo:      d.ContactInfo,
		RegistrationDate: models.NewDateTime(d.RegistrationDate),
	}
}

func transactionFromDoc(d transactionDoc, seller *models.Seller) (models.Transaction, error) {
	amount, err := decimalFrom128(d.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	return models.Transaction{
		ID:              d.ID,
		Seller:          seller,
		Amount:          amount,
		PaymentType:     models.PaymentType(d.PaymentType),
		TransactionDate: models.NewDateTime(d.TransactionDate),
	}, nil
}

func decimalTo128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func decimalFrom128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

// MongoStore keeps sellers and transactions in two collections. Integer ids
// come from a counters collection so both backends expose the same ids.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	sellerColl   *mongo.Collection
	txColl       *mongo.Collection
	counterColl  *mongo.Collection
	sellers      *mongoSellerRepository
	transactions *mongoTransactionRepository
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	s := &MongoStore{
		client:      client,
		db:          db,
		sellerColl:  db.Collection("seller"),
		txColl:      db.Collection("transaction"),
		counterColl: db.Collection("counters"),
	}
	s.sellers = &mongoSellerRepository{store: s}
	s.transactions = &mongoTransactionRepository{store: s}
	return s
}

func (s *MongoStore) Sellers() SellerRepository           { return s.sellers }
func (s *MongoStore) Transactions() TransactionRepository { return s.transactions }

func (s *MongoStore) Migrate(ctx context.Context) error {
	// transactions cannot create collections on older servers
	for _, name := range []string{"seller", "transaction", "counters"} {
		err := s.db.CreateCollection(ctx, name)
		var cmdErr mongo.CommandError
		if err != nil && !(errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists") {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	_, err := s.txColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		{Keys: bson.D{{Key: "transaction_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create transaction indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counterColl.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) findSeller(ctx context.Context, id int64) (*models.Seller, error) {
	var doc sellerDoc
	if err := s.sellerColl.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, classifyMongo(err)
	}
	seller := sellerFromDoc(doc)
	return &seller, nil
}

func (s *MongoStore) sellersByID(ctx context.Context, ids []int64) (map[int64]*models.Seller, error) {
	out := make(map[int64]*models.Seller, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.sellerColl.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, classifyMongo(err)
	}
	var docs []sellerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongo(err)
	}
	for _, d := range docs {
		seller := sellerFromDoc(d)
		out[d.ID] = &seller
	}
	return out, nil
}

func classifyMongo(err error) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return integrityError(err)
	}
	return err
}
