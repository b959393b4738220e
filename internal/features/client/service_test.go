package client

import (
	"context"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClientRepo struct {
	clients map[string]*Client
	updated map[string]bson.M
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients: make(map[string]*Client),
		updated: make(map[string]bson.M),
	}
}

func (f *fakeClientRepo) Create(ctx context.Context, c *Client) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.clients[c.ID.Hex()] = c
	return nil
}

func (f *fakeClientRepo) FindByID(ctx context.Context, id string) (*Client, error) {
	if c, ok := f.clients[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("client not found")
}

func (f *fakeClientRepo) FindByQuickBooksID(ctx context.Context, qboID string) (*Client, error) {
	return nil, apperr.NotFound("client not found")
}

func (f *fakeClientRepo) List(ctx context.Context, filter bson.M) ([]Client, error) {
	var out []Client
	for _, c := range f.clients {
		if creator, ok := filter["created_by"]; ok && c.CreatedBy != creator {
			continue
		}
		if dept, ok := filter["department"]; ok && c.Department != dept {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeClientRepo) Update(ctx context.Context, id string, set bson.M) error {
	f.updated[id] = set
	return nil
}

func (f *fakeClientRepo) Delete(ctx context.Context, id string) error {
	delete(f.clients, id)
	return nil
}

func seedClient(repo *fakeClientRepo, company, createdBy, department string) *Client {
	c := &Client{
		ID:          primitive.NewObjectID(),
		CompanyName: company,
		Email:       "contact@" + company + ".test",
		CreatedBy:   createdBy,
		Department:  department,
		Status:      "active",
	}
	repo.clients[c.ID.Hex()] = c
	return c
}

func TestGetClientScopeEnforcement(t *testing.T) {
	repo := newFakeClientRepo()
	mine := seedClient(repo, "acme", "u1", "Field")
	theirs := seedClient(repo, "globex", "u2", "Office")

	svc := NewClientService(repo)

	tests := []struct {
		name     string
		decision permission.Decision
		id       string
		wantErr  bool
	}{
		{
			name:     "self scope sees own record",
			decision: permission.Decision{Allowed: true, Scope: permission.ScopeSelf, UserID: "u1"},
			id:       mine.ID.Hex(),
		},
		{
			name:     "self scope cannot see another creator's record",
			decision: permission.Decision{Allowed: true, Scope: permission.ScopeSelf, UserID: "u1"},
			id:       theirs.ID.Hex(),
			wantErr:  true,
		},
		{
			name:     "department scope keys on department",
			decision: permission.Decision{Allowed: true, Scope: permission.ScopeDepartment, UserID: "u3", Department: "Office"},
			id:       theirs.ID.Hex(),
		},
		{
			name:     "all scope sees everything",
			decision: permission.Decision{Allowed: true, Scope: permission.ScopeAll, UserID: "u3"},
			id:       mine.ID.Hex(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetClient(context.Background(), tt.decision, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetClient err = %v, wantErr %v", err, tt.wantErr)
			}
			// An out-of-scope record must be indistinguishable from a
			// missing one.
			if err != nil && !apperr.Is(err, apperr.KindNotFound) {
				t.Errorf("kind = %v, want not found", apperr.KindOf(err))
			}
		})
	}
}

func TestGetClientStripsRestrictedFields(t *testing.T) {
	repo := newFakeClientRepo()
	c := seedClient(repo, "acme", "u1", "Field")

	svc := NewClientService(repo)
	d := permission.Decision{
		Allowed:          true,
		Scope:            permission.ScopeAll,
		UserID:           "u1",
		RestrictedFields: map[string]struct{}{"email": {}, "notes": {}},
	}

	doc, err := svc.GetClient(context.Background(), d, c.ID.Hex())
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if _, present := doc["email"]; present {
		t.Error("restricted field email survived")
	}
	if doc["company_name"] != "acme" {
		t.Errorf("company_name = %v, unrestricted field must survive", doc["company_name"])
	}
}

func TestListClientsAppliesScopeFilter(t *testing.T) {
	repo := newFakeClientRepo()
	seedClient(repo, "acme", "u1", "Field")
	seedClient(repo, "globex", "u2", "Office")
	seedClient(repo, "initech", "u1", "Field")

	svc := NewClientService(repo)
	d := permission.Decision{Allowed: true, Scope: permission.ScopeSelf, UserID: "u1"}

	docs, err := svc.ListClients(context.Background(), d)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len = %d, want only the caller's 2 records", len(docs))
	}
}

func TestUpdateClientRejectsRestrictedWriteBeforeLookup(t *testing.T) {
	repo := newFakeClientRepo()
	c := seedClient(repo, "acme", "u1", "Field")

	svc := NewClientService(repo)
	d := permission.Decision{
		Allowed:          true,
		Scope:            permission.ScopeAll,
		UserID:           "u1",
		RestrictedFields: map[string]struct{}{"notes": {}},
	}

	err := svc.UpdateClient(context.Background(), d, c.ID.Hex(), map[string]interface{}{
		"notes": "secret",
	})
	if !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Fatalf("err = %v, want permission denied", err)
	}
	if len(repo.updated) != 0 {
		t.Error("rejected write reached the repository")
	}
}

func TestUpdateClientWhitelist(t *testing.T) {
	repo := newFakeClientRepo()
	c := seedClient(repo, "acme", "u1", "Field")

	svc := NewClientService(repo)
	d := permission.Decision{Allowed: true, Scope: permission.ScopeAll, UserID: "u1"}

	if err := svc.UpdateClient(context.Background(), d, c.ID.Hex(), map[string]interface{}{
		"created_by": "u9",
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, non-updatable field must fail validation", err)
	}

	if err := svc.UpdateClient(context.Background(), d, c.ID.Hex(), map[string]interface{}{
		"phone": "555-0100",
	}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if repo.updated[c.ID.Hex()]["phone"] != "555-0100" {
		t.Error("allowed update did not reach the repository")
	}
}

func TestCreateClientStampsOwnership(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo)
	d := permission.Decision{Allowed: true, Scope: permission.ScopeSelf, UserID: "u1", Department: "Field"}

	c := &Client{CompanyName: "acme"}
	if err := svc.CreateClient(context.Background(), d, c); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if c.CreatedBy != "u1" || c.Department != "Field" {
		t.Errorf("ownership = (%s, %s), want stamped from decision", c.CreatedBy, c.Department)
	}

	if err := svc.CreateClient(context.Background(), d, &Client{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, missing company_name must fail validation", err)
	}
}
