// Package session owns the client's authentication lifecycle: who is logged
// in, the persisted token, bootstrap at startup, and every transition in
// between. It is the single writer of both the session state and the token
// store; the UI and the guards only ever observe it.
package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// View names the navigation targets session transitions can request.
type View string

const (
	// ViewHome is the public landing view.
	ViewHome View = "home"
	// ViewLogin is the guest-only credential view.
	ViewLogin View = "login"
	// ViewDashboard is the authenticated landing view.
	ViewDashboard View = "dashboard"
)

// Navigator receives navigation requests triggered by session transitions
// (successful login lands on the dashboard, logout on the public home).
// The terminal client implements it as a view switch.
type Navigator interface {
	NavigateTo(view View)
}

// Gateway is the slice of the API client the controller drives. Exactly one
// network round trip per call; failures arrive normalized as *apierr.Error.
type Gateway interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	FetchSelf(ctx context.Context) (*models.UserProfile, error)
	UpdateSelf(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error)
	DeleteSelf(ctx context.Context) error
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (*models.MessageResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
}

// Snapshot is an immutable view of the session at one point in time.
// Invariant: Authenticated is true iff User is non-nil and was produced by
// an identity-verifying backend call.
type Snapshot struct {
	User          *models.UserProfile
	Authenticated bool
	Loading       bool
	Initialized   bool
}

// ErrSuperseded is returned when an operation finished successfully on the
// wire but a newer session transition (typically a logout) happened while it
// was in flight. The late result is discarded; observable state already
// reflects the newer transition.
var ErrSuperseded = errors.New("session: operation superseded")
