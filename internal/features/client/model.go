package client

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a customer account. QuickBooksID links it to the QuickBooks
// Customer entity once the account has been matched or pushed.
type Client struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyName  string             `bson:"company_name" json:"company_name"`
	ContactName  string             `bson:"contact_name" json:"contact_name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	City         string             `bson:"city" json:"city"`
	State        string             `bson:"state" json:"state"`
	Zip          string             `bson:"zip" json:"zip"`
	Status       string             `bson:"status" json:"status"`
	Department   string             `bson:"department" json:"department"`
	QuickBooksID string             `bson:"quickbooks_id,omitempty" json:"quickbooks_id,omitempty"`
	Notes        string             `bson:"notes" json:"notes"`
	CreatedBy    string             `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
