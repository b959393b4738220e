package quickbooks

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

// WebhookLogTTL is how long delivery records are retained before the TTL
// index removes them.
const WebhookLogTTL = 30 * 24 * time.Hour

type ProjectRepository interface {
	FindByProjectID(ctx context.Context, projectID string) (*ProjectRecord, error)
	List(ctx context.Context) ([]ProjectRecord, error)
	ListProjectIDs(ctx context.Context) ([]string, error)
	// UpsertSynced replaces the sync-owned fields of the project record.
	// It must never touch manual_original_contract or manual_change_orders.
	UpsertSynced(ctx context.Context, rec *ProjectRecord) error
	SetManualFields(ctx context.Context, projectID string, originalContract, changeOrders *float64) error
}

type ProjectRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewProjectRepository(db *database.MongodbDB) ProjectRepository {
	return &ProjectRepositoryImpl{DB: db}
}

func (r *ProjectRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("qbo_projects")
}

func (r *ProjectRepositoryImpl) FindByProjectID(ctx context.Context, projectID string) (*ProjectRecord, error) {
	var rec ProjectRecord
	err := r.coll().FindOne(ctx, bson.M{"project_id": projectID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProjectRepositoryImpl) List(ctx context.Context) ([]ProjectRecord, error) {
	opts := options.Find().SetSort(bson.M{"project_name": 1})
	cursor, err := r.coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []ProjectRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ProjectRepositoryImpl) ListProjectIDs(ctx context.Context) ([]string, error) {
	values, err := r.coll().Distinct(ctx, "project_id", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// UpsertSynced writes only the fields the sync pipeline owns. The manual
// override fields are deliberately absent from the $set so an existing
// record keeps them and a fresh record gets none.
func (r *ProjectRepositoryImpl) UpsertSynced(ctx context.Context, rec *ProjectRecord) error {
	now := time.Now()
	set := bson.M{
		"project_name":               rec.ProjectName,
		"customer":                   rec.Customer,
		"status":                     rec.Status,
		"computed_original_contract": rec.ComputedOriginalContract,
		"computed_change_orders":     rec.ComputedChangeOrders,
		"transactions":               rec.Transactions,
		"last_synced_at":             rec.LastSyncedAt,
		"updated_at":                 now,
	}
	if rec.StartDate != nil {
		set["start_date"] = rec.StartDate
	}
	if rec.EndDate != nil {
		set["end_date"] = rec.EndDate
	}
	if rec.ProposalNumber != "" {
		set["proposal_number"] = rec.ProposalNumber
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.coll().UpdateOne(ctx,
		bson.M{"project_id": rec.ProjectID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"project_id": rec.ProjectID,
				"created_at": now,
			},
		},
		opts,
	)
	return err
}

// SetManualFields sets or clears the two user-owned override fields. A nil
// value unsets the field, reverting to the computed value.
func (r *ProjectRepositoryImpl) SetManualFields(ctx context.Context, projectID string, originalContract, changeOrders *float64) error {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}

	if originalContract != nil {
		set["manual_original_contract"] = *originalContract
	} else {
		unset["manual_original_contract"] = ""
	}
	if changeOrders != nil {
		set["manual_change_orders"] = *changeOrders
	} else {
		unset["manual_change_orders"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.coll().UpdateOne(ctx, bson.M{"project_id": projectID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("project not found")
	}
	return nil
}

type TokenRepository interface {
	Get(ctx context.Context, service string) (*OAuthTokenRecord, error)
	Upsert(ctx context.Context, rec *OAuthTokenRecord) error
}

type TokenRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewTokenRepository(db *database.MongodbDB) TokenRepository {
	return &TokenRepositoryImpl{DB: db}
}

func (r *TokenRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("oauth_tokens")
}

func (r *TokenRepositoryImpl) Get(ctx context.Context, service string) (*OAuthTokenRecord, error) {
	var rec OAuthTokenRecord
	err := r.coll().FindOne(ctx, bson.M{"service": service}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("no token stored for " + service)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert is last-writer-wins. A refresh race at worst stores a redundant
// fresh token.
func (r *TokenRepositoryImpl) Upsert(ctx context.Context, rec *OAuthTokenRecord) error {
	rec.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll().ReplaceOne(ctx, bson.M{"service": rec.Service}, rec, opts)
	return err
}

type WebhookLogRepository interface {
	Insert(ctx context.Context, log *WebhookLog) error
	MarkProcessed(ctx context.Context, id primitive.ObjectID, entities int, projects []string, procErr string) error
	List(ctx context.Context, limit int64) ([]WebhookLog, error)
	EnsureIndexes(ctx context.Context) error
}

type WebhookLogRepositoryImpl struct {
	DB *database.MongodbDB
}

func NewWebhookLogRepository(db *database.MongodbDB) WebhookLogRepository {
	return &WebhookLogRepositoryImpl{DB: db}
}

func (r *WebhookLogRepositoryImpl) coll() *mongo.Collection {
	return r.DB.DB.Collection("webhook_logs")
}

func (r *WebhookLogRepositoryImpl) Insert(ctx context.Context, log *WebhookLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	if log.ReceivedAt.IsZero() {
		log.ReceivedAt = time.Now()
	}
	_, err := r.coll().InsertOne(ctx, log)
	return err
}

func (r *WebhookLogRepositoryImpl) MarkProcessed(ctx context.Context, id primitive.ObjectID, entities int, projects []string, procErr string) error {
	status := WebhookProcessed
	if procErr != "" {
		status = WebhookFailed
	}
	if projects == nil {
		projects = []string{}
	}
	now := time.Now()
	_, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":             status,
		"error":              procErr,
		"entities_processed": entities,
		"projects_synced":    projects,
		"processed_at":       now,
	}})
	return err
}

func (r *WebhookLogRepositoryImpl) List(ctx context.Context, limit int64) ([]WebhookLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.M{"received_at": -1}).SetLimit(limit)
	cursor, err := r.coll().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []WebhookLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnsureIndexes creates the TTL index that expires delivery records.
func (r *WebhookLogRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	ttl := int32(WebhookLogTTL / time.Second)
	_, err := r.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"received_at": 1},
		Options: options.Index().SetExpireAfterSeconds(ttl),
	})
	return err
}
