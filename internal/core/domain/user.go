// internal/core/domain/user.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents an account's permission level
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an API account. Passwords are stored as bcrypt hashes only.
type User struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate performs domain validation on the user
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

// PrepareForStorage prepares the user for database storage
func (u *User) PrepareForStorage() {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
}
