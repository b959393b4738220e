package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/client"
	"github.com/aivisualpro/devco-erp/internal/features/email"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type EstimateService interface {
	CreateEstimate(ctx context.Context, d permission.Decision, e *Estimate) error
	GetEstimate(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error)
	ListEstimates(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error)
	UpdateEstimate(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error
	SendEstimate(ctx context.Context, d permission.Decision, id string) error
	ApproveEstimate(ctx context.Context, d permission.Decision, id string) error
	DeclineEstimate(ctx context.Context, d permission.Decision, id string) error
	DeleteEstimate(ctx context.Context, d permission.Decision, id string) error
}

type EstimateServiceImpl struct {
	Repo    EstimateRepository
	Clients client.ClientRepository
	Mail    email.EmailService
	Log     *zap.Logger
}

func NewEstimateService(repo EstimateRepository, clients client.ClientRepository, mail email.EmailService, log *zap.Logger) EstimateService {
	return &EstimateServiceImpl{Repo: repo, Clients: clients, Mail: mail, Log: log}
}

func (s *EstimateServiceImpl) CreateEstimate(ctx context.Context, d permission.Decision, e *Estimate) error {
	if e.Title == "" {
		return apperr.Validation("title is required")
	}
	if e.ClientID == "" {
		return apperr.Validation("client_id is required")
	}

	number, err := s.Repo.NextProposalNumber(ctx)
	if err != nil {
		return err
	}
	e.ProposalNumber = number
	e.Status = StatusDraft
	e.Total = totalOf(e.LineItems)
	e.CreatedBy = d.UserID
	if e.Department == "" {
		e.Department = d.Department
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.Repo.Create(ctx, e); err != nil {
		return err
	}

	s.Log.Info("estimate created",
		zap.String("proposal_number", e.ProposalNumber),
		zap.String("client_id", e.ClientID))
	return nil
}

func (s *EstimateServiceImpl) GetEstimate(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error) {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inScope(d, e) {
		return nil, apperr.NotFound("estimate not found")
	}
	return d.StripRestrictedFields(e)
}

func (s *EstimateServiceImpl) ListEstimates(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error) {
	estimates, err := s.Repo.List(ctx, d.ScopeFilter())
	if err != nil {
		return nil, err
	}
	return d.StripRestrictedFieldsAll(estimates)
}

func (s *EstimateServiceImpl) UpdateEstimate(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error {
	if err := d.RejectRestrictedWrites(permission.ModuleEstimates, permission.ActionUpdate, updates); err != nil {
		return err
	}

	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, e) {
		return apperr.NotFound("estimate not found")
	}
	if e.Status == StatusApproved {
		return apperr.Validation("approved estimates cannot be edited")
	}

	allowed := map[string]bool{
		"title": true, "description": true, "line_items": true,
		"status": true, "department": true, "project_id": true,
		"client_id": true, "client_name": true,
	}
	set := bson.M{}
	for k, v := range updates {
		if !allowed[k] {
			return apperr.Validation("field " + k + " cannot be updated")
		}
		set[k] = v
	}
	if len(set) == 0 {
		return apperr.Validation("no updatable fields provided")
	}

	// Status transitions here stop short of approval; that is its own
	// action with its own permission.
	if status, ok := set["status"].(string); ok {
		if status != StatusDraft && status != StatusSent {
			return apperr.Validation("status must be draft or sent; use the approve endpoint")
		}
	}

	if items, ok := set["line_items"]; ok {
		parsed, err := parseLineItems(items)
		if err != nil {
			return err
		}
		set["line_items"] = parsed
		set["total"] = totalOf(parsed)
	}

	return s.Repo.Update(ctx, id, set)
}

// SendEstimate emails the proposal to the client's contact address and moves
// the estimate to sent. Resending an already sent estimate is allowed.
func (s *EstimateServiceImpl) SendEstimate(ctx context.Context, d permission.Decision, id string) error {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, e) {
		return apperr.NotFound("estimate not found")
	}
	if e.Status != StatusDraft && e.Status != StatusSent {
		return apperr.Validation("only draft or sent estimates can be sent")
	}

	cl, err := s.Clients.FindByID(ctx, e.ClientID)
	if err != nil {
		return err
	}
	if cl.Email == "" {
		return apperr.Validation("client has no contact email")
	}

	subject := fmt.Sprintf("Proposal %s: %s", e.ProposalNumber, e.Title)
	body := fmt.Sprintf("Hello %s,\r\n\r\nPlease find proposal %s for %q below.\r\n\r\n",
		cl.ContactName, e.ProposalNumber, e.Title)
	for _, item := range e.LineItems {
		body += fmt.Sprintf("  %s: %.0f x $%.2f = $%.2f\r\n",
			item.Description, item.Quantity, item.UnitPrice, item.Amount)
	}
	body += fmt.Sprintf("\r\nTotal: $%.2f\r\n", e.Total)

	if err := s.Mail.SendEmail(ctx, []string{cl.Email}, subject, body); err != nil {
		return err
	}

	// Status flips only after the mail went out.
	if e.Status == StatusDraft {
		if err := s.Repo.Update(ctx, id, bson.M{"status": StatusSent}); err != nil {
			return err
		}
	}

	s.Log.Info("estimate sent",
		zap.String("proposal_number", e.ProposalNumber),
		zap.String("to", cl.Email))
	return nil
}

func (s *EstimateServiceImpl) ApproveEstimate(ctx context.Context, d permission.Decision, id string) error {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, e) {
		return apperr.NotFound("estimate not found")
	}
	if e.Status == StatusApproved {
		return apperr.Validation("estimate already approved")
	}

	now := time.Now()
	return s.Repo.Update(ctx, id, bson.M{
		"status":      StatusApproved,
		"approved_by": d.UserID,
		"approved_at": now,
	})
}

func (s *EstimateServiceImpl) DeclineEstimate(ctx context.Context, d permission.Decision, id string) error {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, e) {
		return apperr.NotFound("estimate not found")
	}
	return s.Repo.Update(ctx, id, bson.M{"status": StatusDeclined})
}

func (s *EstimateServiceImpl) DeleteEstimate(ctx context.Context, d permission.Decision, id string) error {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, e) {
		return apperr.NotFound("estimate not found")
	}
	if e.Status == StatusApproved {
		return apperr.Validation("approved estimates cannot be deleted")
	}
	return s.Repo.Delete(ctx, id)
}

func inScope(d permission.Decision, e *Estimate) bool {
	switch d.Scope {
	case permission.ScopeSelf:
		return e.CreatedBy == d.UserID
	case permission.ScopeDepartment:
		return e.Department == d.Department
	default:
		return true
	}
}

func totalOf(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// parseLineItems converts the loosely typed body value from a map-based
// update into typed line items, recomputing each amount.
func parseLineItems(v interface{}) ([]LineItem, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, apperr.Validation("line_items must be an array")
	}

	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, apperr.Validation("line_items entries must be objects")
		}
		item := LineItem{}
		if s, ok := m["description"].(string); ok {
			item.Description = s
		}
		if n, ok := m["quantity"].(float64); ok {
			item.Quantity = n
		}
		if n, ok := m["unit_price"].(float64); ok {
			item.UnitPrice = n
		}
		item.Amount = item.Quantity * item.UnitPrice
		items = append(items, item)
	}
	return items, nil
}
