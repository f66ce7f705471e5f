package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a customer or staff member, keyed by email.
type User struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	PhotoURL  string             `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role      string             `json:"role,omitempty" bson:"role,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// IsAdmin reports whether the stored role grants admin rights.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
