package models

import "time"

// Roles an account can hold. Role changes are an administrative operation;
// accounts can never elevate themselves.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// User represents a registered account.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	PasswordHash   string     `json:"-"` // Never expose this to the client
	ResetToken     string     `json:"-"` // sha256 hex of the raw reset token
	ResetExpires   *time.Time `json:"-"`
	ConfirmToken   string     `json:"-"` // sha256 hex of the raw confirm token
	EmailConfirmed bool       `json:"emailConfirmed"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// IsAdmin reports whether the account holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
