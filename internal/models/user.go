package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies how an account was created.
type Provider string

const (
	ProviderEmail  Provider = "EMAIL"
	ProviderGoogle Provider = "GOOGLE"
	ProviderGitHub Provider = "GITHUB"
)

// User represents an account. PasswordHash is nil for accounts created
// through an OAuth provider.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Provider     Provider  `db:"provider" json:"provider"`
	ProviderID   *string   `db:"provider_id" json:"-"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (p Provider) String() string {
	return string(p)
}

// IsValid checks if the provider is one of the known values.
func (p Provider) IsValid() bool {
	return p == ProviderEmail || p == ProviderGoogle || p == ProviderGitHub
}

// RegisterInput represents the input for creating an email/password account.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginInput represents the input for signing in with email and password.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
