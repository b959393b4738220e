package client

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id string) (*Client, error)
	FindByQuickBooksID(ctx context.Context, qboID string) (*Client, error)
	List(ctx context.Context, filter bson.M) ([]Client, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type ClientRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewClientRepository(db *database.MongodbDB) ClientRepository {
	return &ClientRepositoryImpl{DB: db}
}

func (r *ClientRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("clients")
}

func (r *ClientRepositoryImpl) Create(ctx context.Context, c *Client) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll().InsertOne(ctx, c)
	return err
}

func (r *ClientRepositoryImpl) FindByID(ctx context.Context, id string) (*Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid client id")
	}

	var c Client
	err = r.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("client not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepositoryImpl) FindByQuickBooksID(ctx context.Context, qboID string) (*Client, error) {
	var c Client
	err := r.coll().FindOne(ctx, bson.M{"quickbooks_id": qboID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("client not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepositoryImpl) List(ctx context.Context, filter bson.M) ([]Client, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []Client{}
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid client id")
	}

	set["updated_at"] = time.Now()
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("client not found")
	}
	return nil
}

func (r *ClientRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid client id")
	}

	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("client not found")
	}
	return nil
}
