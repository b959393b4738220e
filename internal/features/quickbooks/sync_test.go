package quickbooks

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeProjectRepo mirrors the partial-update contract of the Mongo
// implementation: UpsertSynced replaces the sync-owned fields and leaves the
// manual override fields alone.
type fakeProjectRepo struct {
	mu      sync.Mutex
	records map[string]*ProjectRecord
	upserts int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{records: make(map[string]*ProjectRecord)}
}

func (f *fakeProjectRepo) FindByProjectID(ctx context.Context, projectID string) (*ProjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[projectID]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProjectRepo) List(ctx context.Context) ([]ProjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ProjectRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (f *fakeProjectRepo) ListProjectIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeProjectRepo) UpsertSynced(ctx context.Context, rec *ProjectRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	existing, ok := f.records[rec.ProjectID]
	if !ok {
		cp := *rec
		f.records[rec.ProjectID] = &cp
		return nil
	}

	existing.ProjectName = rec.ProjectName
	existing.Customer = rec.Customer
	existing.Status = rec.Status
	existing.ComputedOriginalContract = rec.ComputedOriginalContract
	existing.ComputedChangeOrders = rec.ComputedChangeOrders
	existing.Transactions = rec.Transactions
	existing.LastSyncedAt = rec.LastSyncedAt
	return nil
}

func (f *fakeProjectRepo) SetManualFields(ctx context.Context, projectID string, originalContract, changeOrders *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[projectID]
	if !ok {
		rec = &ProjectRecord{ProjectID: projectID}
		f.records[projectID] = rec
	}
	rec.ManualOriginalContract = originalContract
	rec.ManualChangeOrders = changeOrders
	return nil
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestSyncProjectToDBIsIdempotent(t *testing.T) {
	client := projectClient()
	// Provider returns them out of order; twice with different orderings.
	client.transactions = map[string][]Transaction{
		"101": {
			{TransactionID: "t3", Date: day(10), Type: "Payment", Amount: -500},
			{TransactionID: "t1", Date: day(1), Type: "Invoice", Amount: 10000},
			{TransactionID: "t2", Date: day(5), Type: "Invoice", Amount: 2500},
		},
	}

	repo := newFakeProjectRepo()
	syncer := NewSyncer(client, repo, zap.NewNop())

	if err := syncer.SyncProjectToDB(context.Background(), "101"); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := repo.FindByProjectID(context.Background(), "101")

	client.transactions["101"] = []Transaction{
		{TransactionID: "t2", Date: day(5), Type: "Invoice", Amount: 2500},
		{TransactionID: "t3", Date: day(10), Type: "Payment", Amount: -500},
		{TransactionID: "t1", Date: day(1), Type: "Invoice", Amount: 10000},
	}
	if err := syncer.SyncProjectToDB(context.Background(), "101"); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second, _ := repo.FindByProjectID(context.Background(), "101")

	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Errorf("transaction order not deterministic:\nfirst  %v\nsecond %v",
			first.Transactions, second.Transactions)
	}
	wantOrder := []string{"t1", "t2", "t3"}
	for i, txn := range second.Transactions {
		if txn.TransactionID != wantOrder[i] {
			t.Errorf("position %d = %s, want %s", i, txn.TransactionID, wantOrder[i])
		}
	}
}

func TestSyncComputesContractTotals(t *testing.T) {
	client := projectClient()
	client.transactions = map[string][]Transaction{
		"101": {
			{TransactionID: "t2", Date: day(5), Type: "Invoice", Amount: 2500},
			{TransactionID: "t1", Date: day(1), Type: "Invoice", Amount: 10000},
			{TransactionID: "t4", Date: day(12), Type: "Invoice", Amount: 750},
			{TransactionID: "t3", Date: day(10), Type: "Payment", Amount: -500},
		},
	}

	repo := newFakeProjectRepo()
	syncer := NewSyncer(client, repo, zap.NewNop())

	if err := syncer.SyncProjectToDB(context.Background(), "101"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	rec, _ := repo.FindByProjectID(context.Background(), "101")
	// Earliest invoice is the original contract, later invoices are change
	// orders, payments do not count.
	if rec.ComputedOriginalContract != 10000 {
		t.Errorf("original contract = %v, want 10000", rec.ComputedOriginalContract)
	}
	if rec.ComputedChangeOrders != 3250 {
		t.Errorf("change orders = %v, want 3250", rec.ComputedChangeOrders)
	}
}

func TestSyncPreservesManualOverrides(t *testing.T) {
	client := projectClient()
	client.transactions = map[string][]Transaction{
		"101": {{TransactionID: "t1", Date: day(1), Type: "Invoice", Amount: 10000}},
	}

	repo := newFakeProjectRepo()
	syncer := NewSyncer(client, repo, zap.NewNop())

	if err := syncer.SyncProjectToDB(context.Background(), "101"); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	manual := 12500.0
	if err := repo.SetManualFields(context.Background(), "101", &manual, nil); err != nil {
		t.Fatalf("SetManualFields: %v", err)
	}

	client.transactions["101"] = append(client.transactions["101"],
		Transaction{TransactionID: "t2", Date: day(5), Type: "Invoice", Amount: 3000})
	if err := syncer.SyncProjectToDB(context.Background(), "101"); err != nil {
		t.Fatalf("resync: %v", err)
	}

	rec, _ := repo.FindByProjectID(context.Background(), "101")
	if rec.ManualOriginalContract == nil || *rec.ManualOriginalContract != 12500 {
		t.Fatal("manual override lost across sync")
	}
	if rec.OriginalContract() != 12500 {
		t.Errorf("OriginalContract() = %v, manual value must win", rec.OriginalContract())
	}
	if rec.ComputedChangeOrders != 3000 {
		t.Errorf("computed change orders = %v, sync must still update computed values", rec.ComputedChangeOrders)
	}
	if len(rec.Transactions) != 2 {
		t.Errorf("transactions = %d, sync must still replace the set", len(rec.Transactions))
	}
}

func TestSyncUnknownProject(t *testing.T) {
	repo := newFakeProjectRepo()
	syncer := NewSyncer(projectClient(), repo, zap.NewNop())

	if err := syncer.SyncProjectToDB(context.Background(), "999"); err == nil {
		t.Error("expected not-found error for unknown project")
	}
	if repo.upserts != 0 {
		t.Error("failed sync must not write")
	}
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	client := projectClient()
	client.transactions = map[string][]Transaction{}
	repo := newFakeProjectRepo()
	repo.records["101"] = &ProjectRecord{ProjectID: "101"}
	repo.records["999"] = &ProjectRecord{ProjectID: "999"} // no longer in QuickBooks

	syncer := NewSyncer(client, repo, zap.NewNop())
	synced, failed := syncer.SyncAll(context.Background())

	if synced != 1 || failed != 1 {
		t.Errorf("synced = %d failed = %d, want 1 and 1", synced, failed)
	}
}

func TestContractTotalsNoInvoices(t *testing.T) {
	original, changeOrders := contractTotals([]Transaction{
		{Type: "Payment", Amount: -100},
	})
	if original != 0 || changeOrders != 0 {
		t.Errorf("totals = %v, %v, want zeros without invoices", original, changeOrders)
	}
}
