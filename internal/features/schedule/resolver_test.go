package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/client"
	"github.com/aivisualpro/devco-erp/internal/features/estimate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClientRepo struct {
	byID     map[string]*client.Client
	byName   map[string][]client.Client
	listErr  error
}

func (f *fakeClientRepo) Create(ctx context.Context, c *client.Client) error { return nil }
func (f *fakeClientRepo) FindByID(ctx context.Context, id string) (*client.Client, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("client not found")
}
func (f *fakeClientRepo) FindByQuickBooksID(ctx context.Context, qboID string) (*client.Client, error) {
	return nil, apperr.NotFound("client not found")
}
func (f *fakeClientRepo) List(ctx context.Context, filter bson.M) ([]client.Client, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	name, _ := filter["company_name"].(string)
	return f.byName[name], nil
}
func (f *fakeClientRepo) Update(ctx context.Context, id string, set bson.M) error { return nil }
func (f *fakeClientRepo) Delete(ctx context.Context, id string) error             { return nil }

type fakeEstimateRepo struct {
	byID       map[string]*estimate.Estimate
	byProposal map[string]*estimate.Estimate
	byClient   map[string][]estimate.Estimate
}

func (f *fakeEstimateRepo) Create(ctx context.Context, e *estimate.Estimate) error { return nil }
func (f *fakeEstimateRepo) FindByID(ctx context.Context, id string) (*estimate.Estimate, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("estimate not found")
}
func (f *fakeEstimateRepo) FindByProposalNumber(ctx context.Context, number string) (*estimate.Estimate, error) {
	if e, ok := f.byProposal[number]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("estimate not found")
}
func (f *fakeEstimateRepo) FindByClientName(ctx context.Context, clientName string) ([]estimate.Estimate, error) {
	return f.byClient[clientName], nil
}
func (f *fakeEstimateRepo) List(ctx context.Context, filter bson.M) ([]estimate.Estimate, error) {
	return nil, nil
}
func (f *fakeEstimateRepo) Update(ctx context.Context, id string, set bson.M) error { return nil }
func (f *fakeEstimateRepo) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeEstimateRepo) NextProposalNumber(ctx context.Context) (string, error) {
	return "P-00001", nil
}

func TestLinkResolver(t *testing.T) {
	clientID := primitive.NewObjectID()
	otherClientID := primitive.NewObjectID()
	estimateID := primitive.NewObjectID()

	clients := &fakeClientRepo{
		byID: map[string]*client.Client{
			clientID.Hex(): {ID: clientID, CompanyName: "Acme Corp"},
		},
		byName: map[string][]client.Client{
			"Acme Corp": {{ID: clientID, CompanyName: "Acme Corp"}},
			"Globex": {
				{ID: otherClientID, CompanyName: "Globex"},
				{ID: primitive.NewObjectID(), CompanyName: "Globex"},
			},
		},
	}
	estimates := &fakeEstimateRepo{
		byID: map[string]*estimate.Estimate{
			estimateID.Hex(): {ID: estimateID, ProposalNumber: "P-00042", ClientID: clientID.Hex()},
		},
		byProposal: map[string]*estimate.Estimate{
			"P-00042": {ID: estimateID, ProposalNumber: "P-00042", ClientID: clientID.Hex()},
		},
		byClient: map[string][]estimate.Estimate{
			"Acme Corp": {{ID: estimateID, ClientID: clientID.Hex()}},
		},
	}

	resolver := NewLinkResolver(clients, estimates)

	tests := []struct {
		name               string
		schedule           Schedule
		wantClientID       string
		wantClientBy       string
		wantEstimateID     string
		wantEstimateBy     string
	}{
		{
			name:           "explicit ids win over everything",
			schedule:       Schedule{ClientID: clientID.Hex(), EstimateID: estimateID.Hex(), ProposalNumber: "P-00042"},
			wantClientID:   clientID.Hex(),
			wantClientBy:   "explicit_id",
			wantEstimateID: estimateID.Hex(),
			wantEstimateBy: "explicit_id",
		},
		{
			name:           "proposal number resolves both sides",
			schedule:       Schedule{ProposalNumber: "P-00042"},
			wantClientID:   clientID.Hex(),
			wantClientBy:   "via_estimate",
			wantEstimateID: estimateID.Hex(),
			wantEstimateBy: "proposal_number",
		},
		{
			name:           "unique company name resolves both sides",
			schedule:       Schedule{ClientName: "Acme Corp"},
			wantClientID:   clientID.Hex(),
			wantClientBy:   "company_name",
			wantEstimateID: estimateID.Hex(),
			wantEstimateBy: "client_name_single",
		},
		{
			name:     "ambiguous company name resolves to nothing",
			schedule: Schedule{ClientName: "Globex"},
		},
		{
			name:           "dangling client id falls through to proposal number",
			schedule:       Schedule{ClientID: primitive.NewObjectID().Hex(), ProposalNumber: "P-00042"},
			wantClientID:   clientID.Hex(),
			wantClientBy:   "via_estimate",
			wantEstimateID: estimateID.Hex(),
			wantEstimateBy: "proposal_number",
		},
		{
			name:           "unknown proposal number falls through to name",
			schedule:       Schedule{ProposalNumber: "P-99999", ClientName: "Acme Corp"},
			wantClientID:   clientID.Hex(),
			wantClientBy:   "company_name",
			wantEstimateID: estimateID.Hex(),
			wantEstimateBy: "client_name_single",
		},
		{
			name:     "nothing to resolve from",
			schedule: Schedule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := resolver.Resolve(context.Background(), &tt.schedule)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if links.ClientID != tt.wantClientID {
				t.Errorf("client id = %q, want %q", links.ClientID, tt.wantClientID)
			}
			if links.ClientResolvedBy != tt.wantClientBy {
				t.Errorf("client resolved by = %q, want %q", links.ClientResolvedBy, tt.wantClientBy)
			}
			if links.EstimateID != tt.wantEstimateID {
				t.Errorf("estimate id = %q, want %q", links.EstimateID, tt.wantEstimateID)
			}
			if links.EstimateResolvedBy != tt.wantEstimateBy {
				t.Errorf("estimate resolved by = %q, want %q", links.EstimateResolvedBy, tt.wantEstimateBy)
			}
		})
	}
}

func TestLinkResolverStoreErrorSurfaces(t *testing.T) {
	clients := &fakeClientRepo{listErr: errors.New("query failed")}
	estimates := &fakeEstimateRepo{}
	resolver := NewLinkResolver(clients, estimates)

	_, err := resolver.Resolve(context.Background(), &Schedule{ClientName: "Acme Corp"})
	if err == nil {
		t.Error("store failure must surface, not resolve to empty links")
	}
}
