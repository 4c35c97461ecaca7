// Package users holds the development server's account records and the
// store implementations behind them.
package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is the server-side account record. PasswordHash is a bcrypt hash and
// never leaves the store layer in responses.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	IsVerified   bool
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is the persistence contract for accounts. Create fails with
// ErrEmailTaken on duplicate email; lookups fail with ErrNotFound.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
