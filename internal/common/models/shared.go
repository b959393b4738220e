package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an internal ERP user. A user carries exactly one role plus an
// optional list of per-user permission overrides stored separately.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FirstName    string             `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName     string             `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Status       string             `bson:"status" json:"status"` // active, inactive, suspended
	RoleID       primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	RoleName     string             `bson:"role_name,omitempty" json:"role_name,omitempty"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Log is the persisted shape of an application log entry.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
