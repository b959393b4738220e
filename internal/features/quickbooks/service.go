package quickbooks

import (
	"context"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
)

type QuickBooksService interface {
	ListProjects(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error)
	GetProject(ctx context.Context, d permission.Decision, projectID string) (map[string]interface{}, error)
	SetManualFields(ctx context.Context, d permission.Decision, projectID string, originalContract, changeOrders *float64) error
	SyncProject(ctx context.Context, projectID string) error
	ListWebhookLogs(ctx context.Context, limit int64) ([]WebhookLog, error)
}

type QuickBooksServiceImpl struct {
	Projects ProjectRepository
	Logs     WebhookLogRepository
	Syncer   *Syncer
}

func NewQuickBooksService(projects ProjectRepository, logs WebhookLogRepository, syncer *Syncer) QuickBooksService {
	return &QuickBooksServiceImpl{Projects: projects, Logs: logs, Syncer: syncer}
}

func (s *QuickBooksServiceImpl) ListProjects(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error) {
	records, err := s.Projects.List(ctx)
	if err != nil {
		return nil, err
	}
	return d.StripRestrictedFieldsAll(records)
}

func (s *QuickBooksServiceImpl) GetProject(ctx context.Context, d permission.Decision, projectID string) (map[string]interface{}, error) {
	rec, err := s.Projects.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return d.StripRestrictedFields(rec)
}

// SetManualFields writes the two user-owned override fields. The write is
// still subject to field-level edit restrictions.
func (s *QuickBooksServiceImpl) SetManualFields(ctx context.Context, d permission.Decision, projectID string, originalContract, changeOrders *float64) error {
	touched := map[string]interface{}{
		"manual_original_contract": originalContract,
		"manual_change_orders":     changeOrders,
	}
	if err := d.RejectRestrictedWrites(permission.ModuleFinancials, permission.ActionUpdate, touched); err != nil {
		return err
	}
	return s.Projects.SetManualFields(ctx, projectID, originalContract, changeOrders)
}

func (s *QuickBooksServiceImpl) SyncProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return apperr.Validation("project id is required")
	}
	return s.Syncer.SyncProjectToDB(ctx, projectID)
}

func (s *QuickBooksServiceImpl) ListWebhookLogs(ctx context.Context, limit int64) ([]WebhookLog, error) {
	return s.Logs.List(ctx, limit)
}
