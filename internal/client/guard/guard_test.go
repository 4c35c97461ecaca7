package guard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
	"github.com/dmitrijs2005/cvkeeper/internal/client/session"
)

// fakeSession lets tests control readiness and the reported snapshot.
type fakeSession struct {
	ready chan struct{}
	snap  session.Snapshot

	snapshotCalls atomic.Int32
}

func newFakeSession(authenticated bool) *fakeSession {
	ready := make(chan struct{})
	close(ready)
	f := &fakeSession{ready: ready, snap: session.Snapshot{Authenticated: authenticated, Initialized: true}}
	if authenticated {
		f.snap.User = &models.UserProfile{ID: "u-1", Email: "a@b.com"}
	}
	return f
}

func (f *fakeSession) AwaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.snapshotCalls.Add(1)
	return f.snap
}

var (
	homeRoute      = Route{View: session.ViewHome}
	loginRoute     = Route{View: session.ViewLogin, GuestOnly: true}
	dashboardRoute = Route{View: session.ViewDashboard, Protected: true}
)

func TestAuthGuard_AnonymousOnProtectedRoute_RedirectsToLogin(t *testing.T) {
	sess := newFakeSession(false)

	d, err := AuthGuard(context.Background(), sess, dashboardRoute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, session.ViewLogin, d.RedirectTo)
}

func TestAuthGuard_AuthenticatedOnProtectedRoute_Allows(t *testing.T) {
	sess := newFakeSession(true)

	d, err := AuthGuard(context.Background(), sess, dashboardRoute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAuthGuard_PublicRoute_AllowsAnyone(t *testing.T) {
	for _, authenticated := range []bool{false, true} {
		d, err := AuthGuard(context.Background(), newFakeSession(authenticated), homeRoute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestGuestGuard_AuthenticatedOnGuestRoute_RedirectsToDashboard(t *testing.T) {
	sess := newFakeSession(true)

	d, err := GuestGuard(context.Background(), sess, loginRoute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, session.ViewDashboard, d.RedirectTo)
}

func TestGuestGuard_AnonymousOnGuestRoute_Allows(t *testing.T) {
	sess := newFakeSession(false)

	d, err := GuestGuard(context.Background(), sess, loginRoute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestGuards_BlockUntilBootstrapResolves(t *testing.T) {
	sess := newFakeSession(true)
	sess.ready = make(chan struct{}) // not ready yet

	decided := make(chan Decision, 1)
	go func() {
		d, err := AuthGuard(context.Background(), sess, dashboardRoute)
		require.NoError(t, err)
		decided <- d
	}()

	select {
	case <-decided:
		t.Fatal("guard decided before bootstrap finished")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Zero(t, sess.snapshotCalls.Load(), "no snapshot reads before readiness")

	close(sess.ready)

	select {
	case d := <-decided:
		assert.True(t, d.Allowed)
	case <-time.After(time.Second):
		t.Fatal("guard never resolved after readiness")
	}
}

func TestGuards_ContextCancellationWhileWaiting(t *testing.T) {
	sess := newFakeSession(false)
	sess.ready = make(chan struct{}) // never closed

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := AuthGuard(ctx, sess, dashboardRoute)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = GuestGuard(ctx, sess, loginRoute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolve_AuthDenialWins(t *testing.T) {
	sess := newFakeSession(false)

	// Contradictory route flags: the auth check runs first, so its
	// redirect is the one the caller sees.
	route := Route{View: "odd", Protected: true, GuestOnly: true}
	d, err := Resolve(context.Background(), sess, route)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, session.ViewLogin, d.RedirectTo)
}

func TestResolve_FallsThroughToGuestGuard(t *testing.T) {
	sess := newFakeSession(true)

	d, err := Resolve(context.Background(), sess, loginRoute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, session.ViewDashboard, d.RedirectTo)
}

// flippingSession reports a different authentication state on every
// snapshot read, imitating a transition landing mid-navigation.
type flippingSession struct {
	reads atomic.Int32
}

func (f *flippingSession) AwaitReady(context.Context) error { return nil }

func (f *flippingSession) Snapshot() session.Snapshot {
	authenticated := f.reads.Add(1) == 1 // true on the first read only
	snap := session.Snapshot{Authenticated: authenticated, Initialized: true}
	if authenticated {
		snap.User = &models.UserProfile{ID: "u-1"}
	}
	return snap
}

func TestResolve_EvaluatesBothChecksOnOneSnapshot(t *testing.T) {
	sess := &flippingSession{}
	route := Route{View: "odd", Protected: true, GuestOnly: true}

	d, err := Resolve(context.Background(), sess, route)
	require.NoError(t, err)

	// One snapshot, taken while authenticated: the auth check passes and
	// the guest check denies. Separate reads would have seen the session
	// as anonymous the second time and allowed the navigation.
	assert.False(t, d.Allowed)
	assert.Equal(t, session.ViewDashboard, d.RedirectTo)
	assert.Equal(t, int32(1), sess.reads.Load(), "resolve must read the session exactly once")
}

func TestResolve_AllowsMatchingStates(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		route         Route
	}{
		{"anonymous on login", false, loginRoute},
		{"authenticated on dashboard", true, dashboardRoute},
		{"anonymous on home", false, homeRoute},
		{"authenticated on home", true, homeRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Resolve(context.Background(), newFakeSession(tt.authenticated), tt.route)
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		})
	}
}
