package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EstimateRepository interface {
	Create(ctx context.Context, e *Estimate) error
	FindByID(ctx context.Context, id string) (*Estimate, error)
	FindByProposalNumber(ctx context.Context, number string) (*Estimate, error)
	FindByClientName(ctx context.Context, clientName string) ([]Estimate, error)
	List(ctx context.Context, filter bson.M) ([]Estimate, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	NextProposalNumber(ctx context.Context) (string, error)
}

type EstimateRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewEstimateRepository(db *database.MongodbDB) EstimateRepository {
	return &EstimateRepositoryImpl{DB: db}
}

func (r *EstimateRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("estimates")
}

func (r *EstimateRepositoryImpl) Create(ctx context.Context, e *Estimate) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := r.coll().InsertOne(ctx, e)
	return err
}

func (r *EstimateRepositoryImpl) FindByID(ctx context.Context, id string) (*Estimate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid estimate id")
	}

	var e Estimate
	err = r.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("estimate not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EstimateRepositoryImpl) FindByProposalNumber(ctx context.Context, number string) (*Estimate, error) {
	var e Estimate
	err := r.coll().FindOne(ctx, bson.M{"proposal_number": number}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("estimate not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EstimateRepositoryImpl) FindByClientName(ctx context.Context, clientName string) ([]Estimate, error) {
	return r.List(ctx, bson.M{"client_name": clientName})
}

func (r *EstimateRepositoryImpl) List(ctx context.Context, filter bson.M) ([]Estimate, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	estimates := []Estimate{}
	if err := cursor.All(ctx, &estimates); err != nil {
		return nil, err
	}
	return estimates, nil
}

func (r *EstimateRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid estimate id")
	}

	set["updated_at"] = time.Now()
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("estimate not found")
	}
	return nil
}

func (r *EstimateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid estimate id")
	}

	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("estimate not found")
	}
	return nil
}

// NextProposalNumber issues a sequential number from a counters document.
// findOneAndUpdate with $inc is atomic, so concurrent creates never share
// a number.
func (r *EstimateRepositoryImpl) NextProposalNumber(ctx context.Context) (string, error) {
	counters := r.DB.DB.Collection("counters")

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "proposal_number"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("P-%05d", doc.Seq), nil
}
