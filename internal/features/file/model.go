package file

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRecord is the metadata row for an uploaded document. The bytes live in
// object storage under Key; Category groups job tickets, safety forms and
// vendor docs onto their owning record.
type FileRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key         string             `bson:"key" json:"key"`
	FileName    string             `bson:"file_name" json:"file_name"`
	ContentType string             `bson:"content_type" json:"content_type"`
	Size        int64              `bson:"size" json:"size"`
	Category    string             `bson:"category" json:"category"`
	RelatedID   string             `bson:"related_id,omitempty" json:"related_id,omitempty"`
	Department  string             `bson:"department" json:"department"`
	UploadedBy  string             `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
