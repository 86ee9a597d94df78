package repository

import (
	"context"
	"errors"
	"fmt"

	"crm/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSellerRepository struct {
	store *MongoStore
}

func (r *mongoSellerRepository) FindAll(ctx context.Context) ([]models.Seller, error) {
	cursor, err := r.store.sellerColl.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	var docs []sellerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sellers: %w", err)
	}
	sellers := make([]models.Seller, 0, len(docs))
	for _, d := range docs {
		sellers = append(sellers, sellerFromDoc(d))
	}
	return sellers, nil
}

func (r *mongoSellerRepository) FindByID(ctx context.Context, id int64) (*models.Seller, error) {
	return r.store.findSeller(ctx, id)
}

func (r *mongoSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	id, err := r.store.nextID(ctx, "seller")
	if err != nil {
		return err
	}
	doc := sellerDoc{
		ID:               id,
		Name:             seller.Name,
		ContactInfo:      seller.ContactInfo,
		RegistrationDate: seller.RegistrationDate.Time,
	}
	if _, err := r.store.sellerColl.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create seller: %w", classifyMongo(err))
	}
	seller.ID = id
	return nil
}

func (r *mongoSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	res, err := r.store.sellerColl.UpdateOne(ctx,
		bson.M{"_id": seller.ID},
		bson.M{"$set": bson.M{"name": seller.Name, "contact_info": seller.ContactInfo}},
	)
	if err != nil {
		return fmt.Errorf("update seller %d: %w", seller.ID, classifyMongo(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithTransactions runs inside a session transaction, which requires
// a replica set or sharded cluster.
func (r *mongoSellerRepository) DeleteWithTransactions(ctx context.Context, id int64) error {
	session, err := r.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.store.txColl.DeleteMany(sc, bson.M{"seller_id": id}); err != nil {
			return nil, fmt.Errorf("delete transactions of seller %d: %w", id, err)
		}
		res, err := r.store.sellerColl.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("delete seller %d: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *mongoSellerRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.store.sellerColl.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count sellers: %w", err)
	}
	return n, nil
}
