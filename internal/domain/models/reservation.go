// internal/domain/models/reservation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservationRequest is a booking request submitted from the public site.
type ReservationRequest struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Email       string              `bson:"email" json:"email"`
	Inscription *string             `bson:"inscription,omitempty" json:"inscription"`
	Phone       *string             `bson:"phone,omitempty" json:"phone"`
	Message     string              `bson:"message" json:"message"`
	Status      string              `bson:"status" json:"status"`
	ServiceID   *primitive.ObjectID `bson:"service_id,omitempty" json:"-"`
	ServiceName string              `bson:"service_name,omitempty" json:"-"` // denormalized at submit time
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	ReadAt      *time.Time          `bson:"read_at,omitempty" json:"readAt"`
}

// Reservation statuses
const (
	ReservationNew      = "new"
	ReservationRead     = "read"
	ReservationArchived = "archived"
)

// IsValidReservationStatus checks if a status is valid.
func IsValidReservationStatus(s string) bool {
	switch s {
	case ReservationNew, ReservationRead, ReservationArchived:
		return true
	}
	return false
}
