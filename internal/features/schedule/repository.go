package schedule

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

type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	FindByID(ctx context.Context, id string) (*Schedule, error)
	List(ctx context.Context, filter bson.M) ([]Schedule, error)
	ListBetween(ctx context.Context, scope bson.M, from, to time.Time) ([]Schedule, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type ScheduleRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{DB: db}
}

func (r *ScheduleRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("schedules")
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, s *Schedule) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.coll().InsertOne(ctx, s)
	return err
}

func (r *ScheduleRepositoryImpl) FindByID(ctx context.Context, id string) (*Schedule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid schedule id")
	}

	var s Schedule
	err = r.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("schedule not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepositoryImpl) List(ctx context.Context, filter bson.M) ([]Schedule, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.M{"start_date": 1})
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	schedules := []Schedule{}
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepositoryImpl) ListBetween(ctx context.Context, scope bson.M, from, to time.Time) ([]Schedule, error) {
	filter := bson.M{
		"start_date": bson.M{"$lt": to},
		"end_date":   bson.M{"$gte": from},
	}
	for k, v := range scope {
		filter[k] = v
	}
	return r.List(ctx, filter)
}

func (r *ScheduleRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid schedule id")
	}

	set["updated_at"] = time.Now()
	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("schedule not found")
	}
	return nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid schedule id")
	}

	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("schedule not found")
	}
	return nil
}
