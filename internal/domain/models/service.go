// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is one entry of the treatment and price catalog.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category    string             `bson:"category" json:"category"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Prices      []any              `bson:"prices" json:"prices"` // free-form, typically [{label, price}]
	Highlight   bool               `bson:"highlight" json:"highlight"`
	SortOrder   int                `bson:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
