package quickbooks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeClient serves canned entities keyed by id. Absent ids behave like the
// real client's 404 path: (nil, nil).
type fakeClient struct {
	mu           sync.Mutex
	customers    map[string]*Customer
	invoices     map[string]*Invoice
	estimates    map[string]*Estimate
	payments     map[string]*Payment
	bills        map[string]*Bill
	purchases    map[string]*Purchase
	transactions map[string][]Transaction
	err          error

	transactionCalls map[string]int
}

func (f *fakeClient) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customers[id], nil
}

func (f *fakeClient) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.invoices[id], nil
}

func (f *fakeClient) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.estimates[id], nil
}

func (f *fakeClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payments[id], nil
}

func (f *fakeClient) GetBill(ctx context.Context, id string) (*Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bills[id], nil
}

func (f *fakeClient) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases[id], nil
}

func (f *fakeClient) ProjectTransactions(ctx context.Context, projectID string) ([]Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	if f.transactionCalls == nil {
		f.transactionCalls = make(map[string]int)
	}
	f.transactionCalls[projectID]++
	f.mu.Unlock()
	return f.transactions[projectID], nil
}

// projectClient builds a fake with one account customer "100" holding two
// project sub-customers "101" and "102".
func projectClient() *fakeClient {
	return &fakeClient{
		customers: map[string]*Customer{
			"100": {ID: "100", DisplayName: "Acme Corp", Active: true},
			"101": {ID: "101", DisplayName: "Acme - Warehouse", Job: true, Active: true,
				ParentRef: &Ref{Value: "100", Name: "Acme Corp"}},
			"102": {ID: "102", DisplayName: "Acme - Office", Job: true, Active: true,
				ParentRef: &Ref{Value: "100", Name: "Acme Corp"}},
		},
	}
}

func sortedIDs(s ProjectSet) []string {
	ids := s.IDs()
	sort.Strings(ids)
	return ids
}

func TestResolveProjectIDs(t *testing.T) {
	client := projectClient()
	client.invoices = map[string]*Invoice{
		"inv1": {ID: "inv1", CustomerRef: &Ref{Value: "101"}},
		"inv2": {ID: "inv2", CustomerRef: &Ref{Value: "102"}},
		"inv3": {ID: "inv3", CustomerRef: &Ref{Value: "100"}},
	}
	client.estimates = map[string]*Estimate{
		"est1": {ID: "est1", CustomerRef: &Ref{Value: "101"}},
	}
	client.payments = map[string]*Payment{
		// Covers invoices on two different projects.
		"pay1": {ID: "pay1", Line: []PaymentLine{
			{LinkedTxn: []LinkedTxn{{TxnID: "inv1", TxnType: "Invoice"}}},
			{LinkedTxn: []LinkedTxn{{TxnID: "inv2", TxnType: "Invoice"}}},
		}},
		"pay2": {ID: "pay2", CustomerRef: &Ref{Value: "101"}},
	}
	client.bills = map[string]*Bill{
		"bill1": {ID: "bill1", Line: []PurchaseLine{
			{AccountBasedExpenseLineDetail: &ExpenseLineDetail{CustomerRef: &Ref{Value: "101"}}},
			{ItemBasedExpenseLineDetail: &ExpenseLineDetail{CustomerRef: &Ref{Value: "102"}}},
			{}, // no project attribution on this line
		}},
	}

	tests := []struct {
		name       string
		entityType string
		entityID   string
		want       []string
	}{
		{"project sub-customer", "Customer", "101", []string{"101"}},
		{"top-level customer is not a project", "Customer", "100", []string{}},
		{"unknown customer id", "Customer", "999", []string{}},
		{"invoice one hop", "Invoice", "inv1", []string{"101"}},
		{"invoice to top-level customer", "Invoice", "inv3", []string{}},
		{"missing invoice", "Invoice", "nope", []string{}},
		{"estimate one hop", "Estimate", "est1", []string{"101"}},
		{"payment via linked invoices unions projects", "Payment", "pay1", []string{"101", "102"}},
		{"payment via direct customer ref", "Payment", "pay2", []string{"101"}},
		{"bill unions line-level refs", "Bill", "bill1", []string{"101", "102"}},
		{"unhandled entity type", "Vendor", "v1", []string{}},
	}

	resolver := NewEntityResolver(client, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := resolver.ResolveProjectIDs(context.Background(), tt.entityType, tt.entityID)
			if err != nil {
				t.Fatalf("ResolveProjectIDs error: %v", err)
			}
			got := sortedIDs(set)
			if len(got) != len(tt.want) {
				t.Fatalf("projects = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("projects = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestResolveProjectIDsTransportError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	resolver := NewEntityResolver(client, zap.NewNop())

	if _, err := resolver.ResolveProjectIDs(context.Background(), "Invoice", "inv1"); err == nil {
		t.Error("transport failure must surface, not resolve to empty")
	}
}

func TestProjectSetDedup(t *testing.T) {
	set := ProjectSet{}
	set.add("101")
	set.add("101")
	set.add("")
	set.merge(ProjectSet{"101": {}, "102": {}})

	if len(set) != 2 {
		t.Errorf("set = %v, want exactly {101, 102}", set.IDs())
	}
}
