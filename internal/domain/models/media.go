// internal/domain/models/media.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media is an uploaded image. Files are served under /images/<Filename>.
type Media struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename     string             `bson:"filename" json:"filename"`
	OriginalName string             `bson:"original_name" json:"originalName"`
	Alt          *string            `bson:"alt,omitempty" json:"alt"`
	MimeType     string             `bson:"mime_type" json:"mimeType"`
	SizeBytes    int64              `bson:"size_bytes" json:"sizeBytes"`
	Width        *int               `bson:"width,omitempty" json:"width"`
	Height       *int               `bson:"height,omitempty" json:"height"`
	UploadedAt   time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}

// ImagePath returns the public path of a stored image file.
func ImagePath(filename string) string {
	return "/images/" + filename
}
