package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RoleUsageCounter reports how many users reference a role. Satisfied by the
// user repository via an adapter in main.
type RoleUsageCounter interface {
	CountByRole(ctx context.Context, roleID string) (int64, error)
}

type PermissionService interface {
	CreateRole(ctx context.Context, actorID string, role *Role) (*Role, error)
	GetRole(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, actorID, id string, role *Role) error
	DeleteRole(ctx context.Context, actorID, id string) error

	CreateOverride(ctx context.Context, actorID string, override *UserPermissionOverride) (*UserPermissionOverride, error)
	ListOverrides(ctx context.Context, userID string) ([]UserPermissionOverride, error)
	DeleteOverride(ctx context.Context, actorID, id string) error

	ListAuditLogs(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]PermissionAuditLog, error)
	EffectiveFor(ctx context.Context, userID string) (*Effective, error)
}

type PermissionServiceImpl struct {
	RoleRepo     RoleRepository
	OverrideRepo OverrideRepository
	AuditRepo    AuditLogRepository
	UsageCounter RoleUsageCounter
	Checker      *Checker
	Log          *zap.Logger
}

func NewPermissionService(
	roleRepo RoleRepository,
	overrideRepo OverrideRepository,
	auditRepo AuditLogRepository,
	usageCounter RoleUsageCounter,
	checker *Checker,
	log *zap.Logger,
) PermissionService {
	return &PermissionServiceImpl{
		RoleRepo:     roleRepo,
		OverrideRepo: overrideRepo,
		AuditRepo:    auditRepo,
		UsageCounter: usageCounter,
		Checker:      checker,
		Log:          log,
	}
}

// audit appends one entry. A failed insert is logged but never fails the
// mutation that produced it.
func (s *PermissionServiceImpl) audit(ctx context.Context, entry PermissionAuditLog) {
	entry.Timestamp = time.Now()
	if err := s.AuditRepo.Insert(ctx, entry); err != nil {
		s.Log.Error("failed to write permission audit log",
			zap.String("changed_by", entry.ChangedBy),
			zap.String("module", entry.Module),
			zap.Error(err))
	}
}

func (s *PermissionServiceImpl) CreateRole(ctx context.Context, actorID string, role *Role) (*Role, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if role.Name == RoleSuperAdmin {
		return nil, apperr.Validation("the super admin role name is reserved")
	}

	role.ID = primitive.NewObjectID()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt

	if err := s.RoleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.audit(ctx, PermissionAuditLog{
		RoleID:    role.ID.Hex(),
		ChangedBy: actorID,
		NewValue:  role.Permissions,
	})

	return role, nil
}

func (s *PermissionServiceImpl) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.RoleRepo.FindByID(ctx, id)
}

func (s *PermissionServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.RoleRepo.List(ctx)
}

func (s *PermissionServiceImpl) UpdateRole(ctx context.Context, actorID, id string, role *Role) error {
	if err := role.Validate(); err != nil {
		return err
	}

	previous, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if previous.IsSystemDefault && role.Name != previous.Name {
		return apperr.Validation("system default roles cannot be renamed")
	}

	role.UpdatedAt = time.Now()
	if err := s.RoleRepo.Update(ctx, id, role); err != nil {
		return err
	}

	s.audit(ctx, PermissionAuditLog{
		RoleID:        id,
		ChangedBy:     actorID,
		PreviousValue: previous.Permissions,
		NewValue:      role.Permissions,
	})

	// Any user may reference this role; drop every snapshot.
	s.Checker.InvalidateAll()

	return nil
}

// DeleteRole rejects deletion while any user still references the role.
// Reassignment has to happen first.
func (s *PermissionServiceImpl) DeleteRole(ctx context.Context, actorID, id string) error {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystemDefault {
		return apperr.Validation("system default roles cannot be deleted")
	}

	count, err := s.UsageCounter.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Validation(fmt.Sprintf("role is assigned to %d user(s); reassign them first", count))
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, PermissionAuditLog{
		RoleID:        id,
		ChangedBy:     actorID,
		PreviousValue: role.Permissions,
	})

	s.Checker.InvalidateAll()
	return nil
}

func (s *PermissionServiceImpl) CreateOverride(ctx context.Context, actorID string, override *UserPermissionOverride) (*UserPermissionOverride, error) {
	if err := override.Validate(); err != nil {
		return nil, err
	}

	override.ID = primitive.NewObjectID()
	override.CreatedAt = time.Now()
	if oid, err := primitive.ObjectIDFromHex(actorID); err == nil {
		override.CreatedBy = oid
	}

	if err := s.OverrideRepo.Create(ctx, override); err != nil {
		return nil, err
	}

	s.audit(ctx, PermissionAuditLog{
		UserID:    override.UserID.Hex(),
		ChangedBy: actorID,
		Module:    string(override.Module),
		Action:    string(override.Action),
		NewValue:  override,
	})

	s.Checker.Invalidate(override.UserID.Hex())
	return override, nil
}

func (s *PermissionServiceImpl) ListOverrides(ctx context.Context, userID string) ([]UserPermissionOverride, error) {
	return s.OverrideRepo.FindByUser(ctx, userID)
}

func (s *PermissionServiceImpl) DeleteOverride(ctx context.Context, actorID, id string) error {
	override, err := s.OverrideRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.OverrideRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, PermissionAuditLog{
		UserID:        override.UserID.Hex(),
		ChangedBy:     actorID,
		Module:        string(override.Module),
		Action:        string(override.Action),
		PreviousValue: override,
	})

	s.Checker.Invalidate(override.UserID.Hex())
	return nil
}

func (s *PermissionServiceImpl) ListAuditLogs(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]PermissionAuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.AuditRepo.List(ctx, filters, limit, offset)
}

func (s *PermissionServiceImpl) EffectiveFor(ctx context.Context, userID string) (*Effective, error) {
	return s.Checker.EffectiveFor(ctx, userID)
}
