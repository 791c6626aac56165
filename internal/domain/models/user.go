package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin is the only back-office role.
const RoleAdmin = "admin"

// User is a back-office account. Email is the login identifier, stored
// trimmed and lowercase; EmailCI is its folded form for lookups.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`

	Email   string `bson:"email" json:"email"`
	EmailCI string `bson:"email_ci" json:"-"`

	PasswordHash string `bson:"password_hash" json:"-"`

	Role   string `bson:"role" json:"role"`
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

func IsValidRole(role string) bool { return role == RoleAdmin }

// SecurityRoles lists the role names reported by /api/admin/me. Every
// account carries ROLE_USER.
func SecurityRoles(role string) []string {
	if role == RoleAdmin {
		return []string{"ROLE_ADMIN", "ROLE_USER"}
	}
	return []string{"ROLE_USER"}
}
