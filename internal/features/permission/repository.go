package permission

import (
	"context"
	"errors"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	FindByID(ctx context.Context, id string) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, id string, role *Role) error
	Delete(ctx context.Context, id string) error
}

type RoleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRoleRepository(mongodb *database.MongodbDB) RoleRepository {
	return &RoleRepositoryImpl{
		Collection: mongodb.DB.Collection("roles"),
	}
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *Role) error {
	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, role)
	return err
}

func (r *RoleRepositoryImpl) FindByID(ctx context.Context, id string) (*Role, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid role id")
	}

	var role Role
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("role not found")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.Collection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("role not found")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]Role, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []Role
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, id string, role *Role) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid role id")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        role.Name,
			"description": role.Description,
			"permissions": role.Permissions,
			"updated_at":  role.UpdatedAt,
		},
	}

	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	return err
}

func (r *RoleRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid role id")
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

type OverrideRepository interface {
	Create(ctx context.Context, override *UserPermissionOverride) error
	FindByUser(ctx context.Context, userID string) ([]UserPermissionOverride, error)
	FindByID(ctx context.Context, id string) (*UserPermissionOverride, error)
	Delete(ctx context.Context, id string) error
}

type OverrideRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOverrideRepository(mongodb *database.MongodbDB) OverrideRepository {
	return &OverrideRepositoryImpl{
		Collection: mongodb.DB.Collection("permission_overrides"),
	}
}

func (r *OverrideRepositoryImpl) Create(ctx context.Context, override *UserPermissionOverride) error {
	if override.ID.IsZero() {
		override.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, override)
	return err
}

// FindByUser returns the user's overrides oldest-first so later, more
// specific patches win during the merge.
func (r *OverrideRepositoryImpl) FindByUser(ctx context.Context, userID string) ([]UserPermissionOverride, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var overrides []UserPermissionOverride
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *OverrideRepositoryImpl) FindByID(ctx context.Context, id string) (*UserPermissionOverride, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validation("invalid override id")
	}

	var override UserPermissionOverride
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&override)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("override not found")
	}
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *OverrideRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid override id")
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// AuditLogRepository is append-only: insert and list, nothing else.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry PermissionAuditLog) error
	List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]PermissionAuditLog, error)
}

type AuditLogRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditLogRepository(mongodb *database.MongodbDB) AuditLogRepository {
	return &AuditLogRepositoryImpl{
		Collection: mongodb.DB.Collection("permission_audit_logs"),
	}
}

func (r *AuditLogRepositoryImpl) Insert(ctx context.Context, entry PermissionAuditLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, entry)
	return err
}

func (r *AuditLogRepositoryImpl) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]PermissionAuditLog, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})

	query := bson.M{}
	for k, v := range filters {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		query[k] = v
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []PermissionAuditLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
