package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for user accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) (User, error)
	ListNonAdmin(ctx context.Context, offset, limit int) ([]User, error)
	CountNonAdmin(ctx context.Context) (int, error)
}

// Role is an authorisation tier of an account.
type Role string

const (
	// RoleUser is a regular self-registered account.
	RoleUser Role = "user"
	// RoleAdmin can list accounts and toggle their activation.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a stored account with its password hash.
type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips authentication material from the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the only user shape returned to clients.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"Fullname"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail brings an email to the form used for storage and lookup.
// Emails are compared case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
