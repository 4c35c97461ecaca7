package devserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cvkeeper/internal/client/api"
	"github.com/dmitrijs2005/cvkeeper/internal/client/apierr"
	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// mutableTokens is a TokenSource the test updates as the account logs in
// and out, standing in for the client's persistent store.
type mutableTokens struct {
	mu    sync.Mutex
	token string
}

func (m *mutableTokens) Token(context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *mutableTokens) set(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// TestGateway_AgainstRealServer runs the account lifecycle through the real
// HTTP gateway instead of stub handlers, so the two sides of the wire
// contract (form-encoded login, error envelope, no-body successes, bearer
// revocation) are checked against each other rather than against copies.
func TestGateway_AgainstRealServer(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()

	tokens := &mutableTokens{}
	gw := api.New(ts.URL, 5*time.Second, tokens)

	// Register and adopt the returned token.
	auth, err := gw.Register(ctx, models.RegisterRequest{
		Email:           "ann@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		FirstName:       "Ann",
		LastName:        "Bell",
	})
	require.NoError(t, err)
	require.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "ann@example.com", auth.User.Email)
	tokens.set(auth.AccessToken)

	// The token authenticates a self fetch.
	profile, err := gw.FetchSelf(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, profile.ID)

	// Partial update round-trips through the real JSON contract.
	first := "Anna"
	updated, err := gw.UpdateSelf(ctx, models.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)
	assert.Equal(t, "Bell", updated.LastName)

	// Server-side validation failures arrive through the envelope.
	bad := "not-an-email"
	_, err = gw.UpdateSelf(ctx, models.ProfileUpdate{Email: &bad})
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
	assert.Equal(t, "A valid email address is required", apiErr.Message)

	// Logout answers 204 with no body; the gateway treats that as success.
	require.NoError(t, gw.Logout(ctx))

	// The revoked token is rejected from now on.
	_, err = gw.FetchSelf(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)
	assert.Equal(t, "Token has been revoked", apiErr.Message)
}

func TestGateway_AgainstRealServer_LoginAndPasswordFlows(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()

	tokens := &mutableTokens{}
	gw := api.New(ts.URL, 5*time.Second, tokens)

	auth, err := gw.Register(ctx, models.RegisterRequest{
		Email:           "ann@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		FirstName:       "Ann",
		LastName:        "Bell",
	})
	require.NoError(t, err)
	tokens.set(auth.AccessToken)

	// Rotate the password through the gateway.
	msg, err := gw.ChangePassword(ctx, models.ChangePasswordRequest{
		CurrentPassword:    "correct-horse",
		NewPassword:        "new-password-1",
		ConfirmNewPassword: "new-password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password changed", msg.Message)

	// Form-encoded login: old credentials fail, new ones succeed.
	_, err = gw.Login(ctx, "ann@example.com", "correct-horse")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)

	relogin, err := gw.Login(ctx, "ann@example.com", "new-password-1")
	require.NoError(t, err)
	tokens.set(relogin.AccessToken)

	// Reset flow: request a token, complete the reset, log in with the
	// reset password.
	msg, err = gw.RequestPasswordReset(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "If the email exists, a reset link has been sent", msg.Message)

	var resetToken string
	s.mu.Lock()
	for token := range s.resets {
		resetToken = token
	}
	s.mu.Unlock()
	require.NotEmpty(t, resetToken)

	msg, err = gw.ResetPassword(ctx, models.ResetPasswordRequest{
		Token:              resetToken,
		NewPassword:        "reset-password-1",
		ConfirmNewPassword: "reset-password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password has been reset", msg.Message)

	final, err := gw.Login(ctx, "ann@example.com", "reset-password-1")
	require.NoError(t, err)
	tokens.set(final.AccessToken)

	profile, err := gw.FetchSelf(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, profile.ID)
}
