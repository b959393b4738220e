package email

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmailRepository records every outbound message for the activity trail.
type EmailRepository struct {
	DB *database.MongodbDB
}

func NewEmailRepository(db *database.MongodbDB) *EmailRepository {
	return &EmailRepository{DB: db}
}

func (r *EmailRepository) coll() *mongo.Collection {
	return r.DB.DB.Collection("emails")
}

func (r *EmailRepository) Create(ctx context.Context, e *Email) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := r.coll().InsertOne(ctx, e)
	return err
}

func (r *EmailRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, errMsg string) error {
	_, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"error":      errMsg,
		"updated_at": time.Now(),
	}})
	return err
}
