package quickbooks

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction is one row of a project's financial history as reported by
// QuickBooks. The slice on ProjectRecord is replaced wholesale on every sync.
type Transaction struct {
	TransactionID string    `bson:"transaction_id" json:"transaction_id"`
	Date          time.Time `bson:"date" json:"date"`
	Type          string    `bson:"type" json:"type"`
	Split         string    `bson:"split" json:"split"`
	FromTo        string    `bson:"from_to" json:"from_to"`
	Amount        float64   `bson:"amount" json:"amount"`
	Memo          string    `bson:"memo" json:"memo"`
}

// ProjectRecord mirrors one QuickBooks project (a sub-customer). The sync
// pipeline owns Transactions and the computed totals; ManualOriginalContract
// and ManualChangeOrders are user corrections that win over computed values
// and survive every sync. Nil means unset, reverting to the computed value.
type ProjectRecord struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID              string             `bson:"project_id" json:"project_id"`
	ProjectName            string             `bson:"project_name" json:"project_name"`
	Customer               string             `bson:"customer" json:"customer"`
	StartDate              *time.Time         `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate                *time.Time         `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Status                 string             `bson:"status" json:"status"`
	ProposalNumber         string             `bson:"proposal_number,omitempty" json:"proposal_number,omitempty"`
	ManualOriginalContract *float64           `bson:"manual_original_contract,omitempty" json:"manual_original_contract,omitempty"`
	ManualChangeOrders     *float64           `bson:"manual_change_orders,omitempty" json:"manual_change_orders,omitempty"`
	ComputedOriginalContract float64          `bson:"computed_original_contract" json:"computed_original_contract"`
	ComputedChangeOrders     float64          `bson:"computed_change_orders" json:"computed_change_orders"`
	Transactions           []Transaction      `bson:"transactions" json:"transactions"`
	LastSyncedAt           *time.Time         `bson:"last_synced_at,omitempty" json:"last_synced_at,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

// OriginalContract returns the manual override when set, the computed value
// otherwise.
func (p *ProjectRecord) OriginalContract() float64 {
	if p.ManualOriginalContract != nil {
		return *p.ManualOriginalContract
	}
	return p.ComputedOriginalContract
}

func (p *ProjectRecord) ChangeOrders() float64 {
	if p.ManualChangeOrders != nil {
		return *p.ManualChangeOrders
	}
	return p.ComputedChangeOrders
}

// OAuthTokenRecord is the single persisted token row per external service,
// upserted on every refresh. Last writer wins.
type OAuthTokenRecord struct {
	Service                string    `bson:"service" json:"service"`
	AccessToken            string    `bson:"access_token" json:"-"`
	RefreshToken           string    `bson:"refresh_token" json:"-"`
	RealmID                string    `bson:"realm_id" json:"realm_id"`
	ExpiresAt              time.Time `bson:"expires_at" json:"expires_at"`
	RefreshTokenExpiresAt  time.Time `bson:"refresh_token_expires_at" json:"refresh_token_expires_at"`
	UpdatedAt              time.Time `bson:"updated_at" json:"updated_at"`
}

const (
	WebhookReceived  = "received"
	WebhookProcessed = "processed"
	WebhookFailed    = "failed"
)

// WebhookLog is an append-only delivery record. Documents expire via a TTL
// index on ReceivedAt; they are observability, not state.
type WebhookLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source            string             `bson:"source" json:"source"`
	Payload           string             `bson:"payload" json:"payload"`
	Status            string             `bson:"status" json:"status"`
	Error             string             `bson:"error,omitempty" json:"error,omitempty"`
	EntitiesProcessed int                `bson:"entities_processed" json:"entities_processed"`
	ProjectsSynced    []string           `bson:"projects_synced" json:"projects_synced"`
	ReceivedAt        time.Time          `bson:"received_at" json:"received_at"`
	ProcessedAt       *time.Time         `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

// Webhook payload shapes, as delivered by Intuit.

type WebhookPayload struct {
	EventNotifications []EventNotification `json:"eventNotifications"`
}

type EventNotification struct {
	RealmID         string          `json:"realmId"`
	DataChangeEvent DataChangeEvent `json:"dataChangeEvent"`
}

type DataChangeEvent struct {
	Entities []EntityChange `json:"entities"`
}

type EntityChange struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Operation   string `json:"operation"`
	LastUpdated string `json:"lastUpdated"`
}

// QuickBooks API entity shapes, reduced to the fields resolution and sync
// read.

type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type Customer struct {
	ID          string `json:"Id"`
	DisplayName string `json:"DisplayName"`
	FullyQualifiedName string `json:"FullyQualifiedName"`
	Job         bool   `json:"Job"`
	ParentRef   *Ref   `json:"ParentRef,omitempty"`
	Active      bool   `json:"Active"`
}

type Invoice struct {
	ID          string        `json:"Id"`
	CustomerRef *Ref          `json:"CustomerRef,omitempty"`
	TxnDate     string        `json:"TxnDate"`
	TotalAmt    float64       `json:"TotalAmt"`
	PrivateNote string        `json:"PrivateNote,omitempty"`
	Line        []InvoiceLine `json:"Line,omitempty"`
}

type InvoiceLine struct {
	Amount                float64             `json:"Amount"`
	SalesItemLineDetail   *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

type SalesItemLineDetail struct {
	ItemRef *Ref `json:"ItemRef,omitempty"`
}

type Estimate struct {
	ID          string `json:"Id"`
	CustomerRef *Ref   `json:"CustomerRef,omitempty"`
	TxnDate     string `json:"TxnDate"`
	TotalAmt    float64 `json:"TotalAmt"`
}

type LinkedTxn struct {
	TxnID   string `json:"TxnId"`
	TxnType string `json:"TxnType"`
}

type PaymentLine struct {
	LinkedTxn []LinkedTxn `json:"LinkedTxn,omitempty"`
}

type Payment struct {
	ID                  string        `json:"Id"`
	CustomerRef         *Ref          `json:"CustomerRef,omitempty"`
	TxnDate             string        `json:"TxnDate"`
	TotalAmt            float64       `json:"TotalAmt"`
	PrivateNote         string        `json:"PrivateNote,omitempty"`
	DepositToAccountRef *Ref          `json:"DepositToAccountRef,omitempty"`
	Line                []PaymentLine `json:"Line,omitempty"`
}

type PurchaseLine struct {
	Amount                    float64                    `json:"Amount"`
	AccountBasedExpenseLineDetail *ExpenseLineDetail     `json:"AccountBasedExpenseLineDetail,omitempty"`
	ItemBasedExpenseLineDetail    *ExpenseLineDetail     `json:"ItemBasedExpenseLineDetail,omitempty"`
}

type ExpenseLineDetail struct {
	CustomerRef *Ref `json:"CustomerRef,omitempty"`
}

type Bill struct {
	ID      string         `json:"Id"`
	TxnDate string         `json:"TxnDate"`
	Line    []PurchaseLine `json:"Line,omitempty"`
}

type Purchase struct {
	ID      string         `json:"Id"`
	TxnDate string         `json:"TxnDate"`
	Line    []PurchaseLine `json:"Line,omitempty"`
}
