package schedule

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schedule is a crew assignment for a window of time. Older records link to
// their client and estimate only through denormalized strings (client_name,
// proposal_number); newer ones carry explicit ids. The link resolver in
// resolver.go handles both.
type Schedule struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	ClientID       string             `bson:"client_id,omitempty" json:"client_id,omitempty"`
	ClientName     string             `bson:"client_name" json:"client_name"`
	EstimateID     string             `bson:"estimate_id,omitempty" json:"estimate_id,omitempty"`
	ProposalNumber string             `bson:"proposal_number,omitempty" json:"proposal_number,omitempty"`
	CrewLead       string             `bson:"crew_lead" json:"crew_lead"`
	CrewMembers    []string           `bson:"crew_members" json:"crew_members"`
	Location       string             `bson:"location" json:"location"`
	StartDate      time.Time          `bson:"start_date" json:"start_date"`
	EndDate        time.Time          `bson:"end_date" json:"end_date"`
	Status         string             `bson:"status" json:"status"`
	Department     string             `bson:"department" json:"department"`
	Notes          string             `bson:"notes" json:"notes"`
	CreatedBy      string             `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ScheduleLinks is the resolved client/estimate linkage for a schedule,
// with the name of the strategy that produced each hit.
type ScheduleLinks struct {
	ClientID         string `json:"client_id,omitempty"`
	ClientResolvedBy string `json:"client_resolved_by,omitempty"`
	EstimateID       string `json:"estimate_id,omitempty"`
	EstimateResolvedBy string `json:"estimate_resolved_by,omitempty"`
}
