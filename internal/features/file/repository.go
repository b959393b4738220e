package file

import (
	"context"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FileRepository interface {
	Create(ctx context.Context, f *FileRecord) error
	FindByID(ctx context.Context, id string) (*FileRecord, error)
	List(ctx context.Context, filter bson.M) ([]FileRecord, error)
	Delete(ctx context.Context, id string) error
}

type FileRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewFileRepository(db *database.MongodbDB) FileRepository {
	return &FileRepositoryImpl{DB: db}
}

func (r *FileRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("files")
}

func (r *FileRepositoryImpl) Create(ctx context.Context, f *FileRecord) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := r.coll().InsertOne(ctx, f)
	return err
}

func (r *FileRepositoryImpl) FindByID(ctx context.Context, id string) (*FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid file id")
	}

	var f FileRecord
	err = r.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepositoryImpl) List(ctx context.Context, filter bson.M) ([]FileRecord, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	files := []FileRecord{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid file id")
	}

	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("file not found")
	}
	return nil
}
