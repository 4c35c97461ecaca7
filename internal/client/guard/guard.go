// Package guard gates navigation on session state. Two independent checks
// cooperate: AuthGuard keeps anonymous users out of protected views,
// GuestGuard keeps authenticated users off the guest-only ones. Both wait
// for bootstrap to finish before looking at anything, so a guard can never
// race a half-initialized session.
package guard

import (
	"context"

	"github.com/dmitrijs2005/cvkeeper/internal/client/session"
)

// Route describes a navigation target as far as the guards care.
type Route struct {
	View      session.View
	Protected bool // requires an authenticated session
	GuestOnly bool // login/register style views, hidden once logged in
}

// Decision is the outcome of evaluating the guards for one navigation.
type Decision struct {
	Allowed bool
	// RedirectTo is the view to go to instead when Allowed is false.
	RedirectTo session.View
}

var allow = Decision{Allowed: true}

// SessionSource is the read-only slice of the session controller the guards
// consume.
type SessionSource interface {
	AwaitReady(ctx context.Context) error
	Snapshot() session.Snapshot
}

// AuthGuard denies protected routes to anonymous sessions, redirecting to
// the login view. It blocks until bootstrap has resolved.
func AuthGuard(ctx context.Context, sess SessionSource, route Route) (Decision, error) {
	if err := sess.AwaitReady(ctx); err != nil {
		return Decision{}, err
	}
	return authDecision(sess.Snapshot(), route), nil
}

// GuestGuard denies guest-only routes to authenticated sessions,
// redirecting to the authenticated landing view. It blocks until bootstrap
// has resolved.
func GuestGuard(ctx context.Context, sess SessionSource, route Route) (Decision, error) {
	if err := sess.AwaitReady(ctx); err != nil {
		return Decision{}, err
	}
	return guestDecision(sess.Snapshot(), route), nil
}

func authDecision(snap session.Snapshot, route Route) Decision {
	if route.Protected && !snap.Authenticated {
		return Decision{RedirectTo: session.ViewLogin}
	}
	return allow
}

func guestDecision(snap session.Snapshot, route Route) Decision {
	if route.GuestOnly && snap.Authenticated {
		return Decision{RedirectTo: session.ViewDashboard}
	}
	return allow
}

// Resolve runs both checks against one snapshot, so a session transition
// between them cannot produce a decision neither would have made alone.
// The auth denial wins. It is what the navigation layer calls before
// entering any route.
func Resolve(ctx context.Context, sess SessionSource, route Route) (Decision, error) {
	if err := sess.AwaitReady(ctx); err != nil {
		return Decision{}, err
	}
	snap := sess.Snapshot()
	if d := authDecision(snap, route); !d.Allowed {
		return d, nil
	}
	return guestDecision(snap, route), nil
}
