package estimate

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

type LineItem struct {
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Amount      float64 `bson:"amount" json:"amount"`
}

// Estimate is a proposal sent to a client. ProposalNumber is assigned on
// creation and never reused. ProjectID ties the estimate to the QuickBooks
// financials record once work begins.
type Estimate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProposalNumber string             `bson:"proposal_number" json:"proposal_number"`
	ClientID       string             `bson:"client_id" json:"client_id"`
	ClientName     string             `bson:"client_name" json:"client_name"`
	ProjectID      string             `bson:"project_id,omitempty" json:"project_id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	LineItems      []LineItem         `bson:"line_items" json:"line_items"`
	Total          float64            `bson:"total" json:"total"`
	Status         string             `bson:"status" json:"status"`
	Department     string             `bson:"department" json:"department"`
	ApprovedBy     string             `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	CreatedBy      string             `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
