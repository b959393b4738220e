package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
)

// Client is the read surface of the QuickBooks Online API the resolver and
// sync pipeline depend on. Entity getters return (nil, nil) when the entity
// does not exist, reserving errors for transport and auth failures.
type Client interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetEstimate(ctx context.Context, id string) (*Estimate, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	GetBill(ctx context.Context, id string) (*Bill, error)
	GetPurchase(ctx context.Context, id string) (*Purchase, error)
	// ProjectTransactions fetches the current authoritative transaction set
	// for a project (a QuickBooks sub-customer).
	ProjectTransactions(ctx context.Context, projectID string) ([]Transaction, error)
}

type HTTPClient struct {
	baseURL      string
	minorVersion string
	oauth        *OAuthManager
	http         *http.Client
}

func NewHTTPClient(cfg *config.Config, oauth *OAuthManager) Client {
	return &HTTPClient{
		baseURL:      cfg.QBOAPIBaseURL,
		minorVersion: cfg.QBOMinorVersion,
		oauth:        oauth,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// get performs an authenticated GET and decodes the body into out. Returns
// (false, nil) on a 404 so callers can treat missing entities as soft.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) (bool, error) {
	token, realmID, err := c.oauth.AccessToken(ctx)
	if err != nil {
		return false, err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("minorversion", c.minorVersion)

	u := fmt.Sprintf("%s/v3/company/%s%s?%s", c.baseURL, realmID, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, apperr.ExternalService("quickbooks request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return false, apperr.ExternalService(
			fmt.Sprintf("quickbooks responded %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, apperr.ExternalService("quickbooks response decode failed", err)
	}
	return true, nil
}

func (c *HTTPClient) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var wrapper struct {
		Customer Customer `json:"Customer"`
	}
	ok, err := c.get(ctx, "/customer/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Customer, nil
}

func (c *HTTPClient) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var wrapper struct {
		Invoice Invoice `json:"Invoice"`
	}
	ok, err := c.get(ctx, "/invoice/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Invoice, nil
}

func (c *HTTPClient) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	var wrapper struct {
		Estimate Estimate `json:"Estimate"`
	}
	ok, err := c.get(ctx, "/estimate/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Estimate, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var wrapper struct {
		Payment Payment `json:"Payment"`
	}
	ok, err := c.get(ctx, "/payment/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Payment, nil
}

func (c *HTTPClient) GetBill(ctx context.Context, id string) (*Bill, error) {
	var wrapper struct {
		Bill Bill `json:"Bill"`
	}
	ok, err := c.get(ctx, "/bill/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Bill, nil
}

func (c *HTTPClient) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	var wrapper struct {
		Purchase Purchase `json:"Purchase"`
	}
	ok, err := c.get(ctx, "/purchase/"+url.PathEscape(id), nil, &wrapper)
	if err != nil || !ok {
		return nil, err
	}
	return &wrapper.Purchase, nil
}

// ProjectTransactions pulls every transaction tied to the project via the
// query endpoint, one entity type at a time, and flattens them into the
// internal transaction shape sorted by the provider's returned order.
func (c *HTTPClient) ProjectTransactions(ctx context.Context, projectID string) ([]Transaction, error) {
	transactions := []Transaction{}

	invoices, err := c.queryInvoices(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		transactions = append(transactions, Transaction{
			TransactionID: "Invoice:" + inv.ID,
			Date:          parseTxnDate(inv.TxnDate),
			Type:          "Invoice",
			Split:         invoiceSplit(inv.Line),
			FromTo:        refName(inv.CustomerRef),
			Amount:        inv.TotalAmt,
			Memo:          inv.PrivateNote,
		})
	}

	payments, err := c.queryPayments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		transactions = append(transactions, Transaction{
			TransactionID: "Payment:" + p.ID,
			Date:          parseTxnDate(p.TxnDate),
			Type:          "Payment",
			Split:         refName(p.DepositToAccountRef),
			FromTo:        refName(p.CustomerRef),
			Amount:        -p.TotalAmt,
			Memo:          p.PrivateNote,
		})
	}

	return transactions, nil
}

// invoiceSplit reports the posting counterpart the way a register does: the
// single line item when there is one, "-SPLIT-" across several.
func invoiceSplit(lines []InvoiceLine) string {
	var name string
	count := 0
	for _, line := range lines {
		if line.SalesItemLineDetail == nil || line.SalesItemLineDetail.ItemRef == nil {
			continue
		}
		count++
		name = refName(line.SalesItemLineDetail.ItemRef)
	}
	switch count {
	case 0:
		return ""
	case 1:
		return name
	default:
		return "-SPLIT-"
	}
}

func (c *HTTPClient) queryInvoices(ctx context.Context, customerID string) ([]Invoice, error) {
	var wrapper struct {
		QueryResponse struct {
			Invoice []Invoice `json:"Invoice"`
		} `json:"QueryResponse"`
	}
	q := url.Values{}
	q.Set("query", fmt.Sprintf("SELECT * FROM Invoice WHERE CustomerRef = '%s' MAXRESULTS 1000", customerID))
	if _, err := c.get(ctx, "/query", q, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.QueryResponse.Invoice, nil
}

func (c *HTTPClient) queryPayments(ctx context.Context, customerID string) ([]Payment, error) {
	var wrapper struct {
		QueryResponse struct {
			Payment []Payment `json:"Payment"`
		} `json:"QueryResponse"`
	}
	q := url.Values{}
	q.Set("query", fmt.Sprintf("SELECT * FROM Payment WHERE CustomerRef = '%s' MAXRESULTS 1000", customerID))
	if _, err := c.get(ctx, "/query", q, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.QueryResponse.Payment, nil
}

func parseTxnDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func refName(r *Ref) string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Value
}
