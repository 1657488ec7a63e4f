// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles known to the intranet.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an intranet account.
//
// NOTE:
//   - Password holds a bcrypt hash, never the plaintext. Accounts are
//     provisioned by staff; there is no self-registration.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"username_ci"` // lowercase, diacritics-stripped
	Password   string             `bson:"password" json:"-"`
	Role       string             `bson:"role" json:"role"` // admin | user

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
