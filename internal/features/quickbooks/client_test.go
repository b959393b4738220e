package quickbooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aivisualpro/devco-erp/internal/config"

	"go.uber.org/zap"
)

type fakeTokenRepo struct {
	rec *OAuthTokenRecord
}

func (r *fakeTokenRepo) Get(ctx context.Context, service string) (*OAuthTokenRecord, error) {
	return r.rec, nil
}

func (r *fakeTokenRepo) Upsert(ctx context.Context, rec *OAuthTokenRecord) error {
	r.rec = rec
	return nil
}

// newQBOTestClient wires an HTTPClient against a stub API server with a
// token that never needs refreshing.
func newQBOTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		QBOAPIBaseURL:   srv.URL,
		QBOMinorVersion: "65",
	}
	tokens := &fakeTokenRepo{rec: &OAuthTokenRecord{
		Service:     ServiceQuickBooks,
		AccessToken: "live-token",
		RealmID:     "realm-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
	oauth := NewOAuthManager(cfg, tokens, zap.NewNop())
	return NewHTTPClient(cfg, oauth)
}

func TestProjectTransactionsMapsPaymentFields(t *testing.T) {
	client := newQBOTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(q, "SELECT * FROM Invoice"):
			w.Write([]byte(`{"QueryResponse":{"Invoice":[]}}`))
		case strings.HasPrefix(q, "SELECT * FROM Payment"):
			w.Write([]byte(`{"QueryResponse":{"Payment":[{
				"Id":"pay1",
				"TxnDate":"2026-03-10",
				"TotalAmt":500,
				"CustomerRef":{"value":"101","name":"Acme Corp:Warehouse"},
				"DepositToAccountRef":{"value":"35","name":"Checking"},
				"PrivateNote":"March draw"
			}]}}`))
		default:
			t.Errorf("unexpected query %q", q)
			w.Write([]byte(`{"QueryResponse":{}}`))
		}
	})

	got, err := client.ProjectTransactions(context.Background(), "101")
	if err != nil {
		t.Fatalf("ProjectTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}

	p := got[0]
	if p.TransactionID != "Payment:pay1" {
		t.Errorf("TransactionID = %q", p.TransactionID)
	}
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !p.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", p.Date, want)
	}
	if p.Amount != -500 {
		t.Errorf("Amount = %v, want -500", p.Amount)
	}
	if p.Split != "Checking" {
		t.Errorf("Split = %q, want %q", p.Split, "Checking")
	}
	if p.Memo != "March draw" {
		t.Errorf("Memo = %q, want %q", p.Memo, "March draw")
	}
}

func TestProjectTransactionsInvoiceSplit(t *testing.T) {
	client := newQBOTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(q, "SELECT * FROM Invoice"):
			w.Write([]byte(`{"QueryResponse":{"Invoice":[
				{"Id":"inv1","TxnDate":"2026-03-01","TotalAmt":1000,
				 "Line":[{"Amount":1000,"SalesItemLineDetail":{"ItemRef":{"value":"7","name":"Framing"}}}]},
				{"Id":"inv2","TxnDate":"2026-03-02","TotalAmt":2500,
				 "Line":[{"Amount":1500,"SalesItemLineDetail":{"ItemRef":{"value":"7","name":"Framing"}}},
				         {"Amount":1000,"SalesItemLineDetail":{"ItemRef":{"value":"8","name":"Electrical"}}}]},
				{"Id":"inv3","TxnDate":"2026-03-03","TotalAmt":200,"Line":[]}
			]}}`))
		case strings.HasPrefix(q, "SELECT * FROM Payment"):
			w.Write([]byte(`{"QueryResponse":{"Payment":[]}}`))
		default:
			t.Errorf("unexpected query %q", q)
			w.Write([]byte(`{"QueryResponse":{}}`))
		}
	})

	got, err := client.ProjectTransactions(context.Background(), "101")
	if err != nil {
		t.Fatalf("ProjectTransactions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got))
	}

	splits := map[string]string{}
	for _, txn := range got {
		splits[txn.TransactionID] = txn.Split
	}
	if splits["Invoice:inv1"] != "Framing" {
		t.Errorf("single-line split = %q, want %q", splits["Invoice:inv1"], "Framing")
	}
	if splits["Invoice:inv2"] != "-SPLIT-" {
		t.Errorf("multi-line split = %q, want %q", splits["Invoice:inv2"], "-SPLIT-")
	}
	if splits["Invoice:inv3"] != "" {
		t.Errorf("no-line split = %q, want empty", splits["Invoice:inv3"])
	}
}
