// Package models defines the wire types exchanged with the profile backend.
package models

import "time"

// Role is the backend-assigned authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserProfile is the identity record owned by the backend. The client keeps
// a read-mostly cached copy inside the session; it is replaced wholesale by
// the result of a profile update, never mutated field by field.
type UserProfile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName returns "First Last", or "" when both parts are empty.
func (u *UserProfile) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsAdmin reports whether the account carries the admin role.
func (u *UserProfile) IsAdmin() bool { return u.Role == RoleAdmin }

// AuthResponse is the body returned by the login and register endpoints.
type AuthResponse struct {
	User        UserProfile `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
}

// RegisterRequest is the JSON body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are omitted from
// the request body and left unchanged server-side.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// ChangePasswordRequest is the JSON body of POST /api/v1/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// ResetPasswordRequest is the JSON body of POST /api/v1/auth/reset-password.
type ResetPasswordRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// MessageResponse is the `{message}` body returned by password operations.
type MessageResponse struct {
	Message string `json:"message"`
}

// Preferences is the JSON-serialized preferences object kept in local
// storage next to the token. Only the theme is used today.
type Preferences struct {
	Theme string `json:"theme"`
}
