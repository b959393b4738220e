package client

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
)

type ClientService interface {
	CreateClient(ctx context.Context, d permission.Decision, c *Client) error
	GetClient(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error)
	ListClients(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error)
	UpdateClient(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error
	DeleteClient(ctx context.Context, d permission.Decision, id string) error
}

type ClientServiceImpl struct {
	Repo ClientRepository
}

func NewClientService(repo ClientRepository) ClientService {
	return &ClientServiceImpl{Repo: repo}
}

func (s *ClientServiceImpl) CreateClient(ctx context.Context, d permission.Decision, c *Client) error {
	if c.CompanyName == "" {
		return apperr.Validation("company_name is required")
	}

	c.CreatedBy = d.UserID
	if c.Department == "" {
		c.Department = d.Department
	}
	if c.Status == "" {
		c.Status = "active"
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	return s.Repo.Create(ctx, c)
}

func (s *ClientServiceImpl) GetClient(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inScope(d, c) {
		// Out-of-scope reads look like missing records.
		return nil, apperr.NotFound("client not found")
	}
	return d.StripRestrictedFields(c)
}

func (s *ClientServiceImpl) ListClients(ctx context.Context, d permission.Decision) ([]map[string]interface{}, error) {
	clients, err := s.Repo.List(ctx, d.ScopeFilter())
	if err != nil {
		return nil, err
	}
	return d.StripRestrictedFieldsAll(clients)
}

func (s *ClientServiceImpl) UpdateClient(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error {
	if err := d.RejectRestrictedWrites(permission.ModuleClients, permission.ActionUpdate, updates); err != nil {
		return err
	}

	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, c) {
		return apperr.NotFound("client not found")
	}

	allowed := map[string]bool{
		"company_name": true, "contact_name": true, "email": true, "phone": true,
		"address": true, "city": true, "state": true, "zip": true,
		"status": true, "department": true, "notes": true,
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

	return s.Repo.Update(ctx, id, set)
}

func (s *ClientServiceImpl) DeleteClient(ctx context.Context, d permission.Decision, id string) error {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, c) {
		return apperr.NotFound("client not found")
	}
	return s.Repo.Delete(ctx, id)
}

func inScope(d permission.Decision, c *Client) bool {
	switch d.Scope {
	case permission.ScopeSelf:
		return c.CreatedBy == d.UserID
	case permission.ScopeDepartment:
		return c.Department == d.Department
	default:
		return true
	}
}
