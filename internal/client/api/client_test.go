package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/cvkeeper/internal/client/apierr"
	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// staticTokens is a TokenSource with a fixed answer.
type staticTokens struct {
	token string
}

func (s staticTokens) Token(context.Context) (string, bool) {
	return s.token, s.token != ""
}

func newClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, staticTokens{token: token})
}

func authResponseBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.AuthResponse{
		User:        models.UserProfile{ID: "u-1", Email: "a@b.com", FirstName: "Ann", LastName: "Bell", Role: models.RoleUser, IsActive: true},
		AccessToken: "tok-123",
		TokenType:   "bearer",
		ExpiresIn:   3600,
	})
	require.NoError(t, err)
	return body
}

func TestLogin_SendsFormEncodedCredentials(t *testing.T) {
	var gotContentType, gotUsername, gotPassword, gotAuth string

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotUsername = r.PostFormValue("username")
		gotPassword = r.PostFormValue("password")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(authResponseBody(t))
	}), "")

	resp, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "a@b.com", gotUsername, "credential endpoint expects the email in the username field")
	assert.Equal(t, "secret", gotPassword)
	assert.Empty(t, gotAuth, "no bearer header before a token exists")
	assert.Equal(t, "tok-123", resp.AccessToken)
	assert.Equal(t, "a@b.com", resp.User.Email)
}

func TestLogin_BadCredentials_SurfacesBackendMessage(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Incorrect email or password"}}`))
	}), "")

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
}

func TestErrorDecoding_PrefersStructuredThenFlatThenFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"structured envelope", `{"error":{"message":"Email already registered"}}`, "Email already registered"},
		{"flat message", `{"message":"Too many requests"}`, "Too many requests"},
		{"empty structured message falls through", `{"error":{"code":"X","message":""}}`, "Registration failed"},
		{"garbage body", `<html>nope</html>`, "Registration failed"},
		{"empty body", ``, "Registration failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}), "")

			_, err := c.Register(context.Background(), models.RegisterRequest{Email: "a@b.com"})
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, apierr.KindValidation, apiErr.Kind)
		})
	}
}

func TestFetchSelf_AttachesBearerHeader(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/me", r.URL.Path)
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","email":"a@b.com","role":"user","is_active":true}`))
	}), "abc")

	user, err := c.FetchSelf(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestFetchSelf_NoToken_OmitsHeaderAndSurfaces401(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "absent token must omit the header, not fail client-side")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Missing authentication token"}}`))
	}), "")

	_, err := c.FetchSelf(context.Background())
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuth, apiErr.Kind)
	assert.Equal(t, "Missing authentication token", apiErr.Message)
}

func TestTransportFailure_MapsToNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing is listening anymore

	c := New(url, time.Second, staticTokens{})
	_, err := c.FetchSelf(context.Background())

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.Status)
}

func TestUpdateSelf_SendsOnlyProvidedFields(t *testing.T) {
	var gotBody map[string]any

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","email":"a@b.com","first_name":"New","role":"user"}`))
	}), "abc")

	first := "New"
	user, err := c.UpdateSelf(context.Background(), models.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"first_name": "New"}, gotBody, "nil fields must be omitted entirely")
	assert.Equal(t, "New", user.FirstName)
}

func TestErrorStatus_AlwaysFromResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   apierr.Kind
	}{
		{"server error with body", http.StatusServiceUnavailable, `{"message":"maintenance"}`, apierr.KindServer},
		{"unusual status, empty body", http.StatusTeapot, ``, apierr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), "abc")

			err := c.Logout(context.Background())
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status, "the error carries the wire status verbatim")
			assert.Equal(t, tt.kind, apiErr.Kind)
		})
	}
}

func TestRequestPasswordReset_GenericSuccess(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nobody@example.com", body["email"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"If the email exists, a reset link has been sent"}`))
	}), "")

	resp, err := c.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "If the email exists, a reset link has been sent", resp.Message)
}

func TestNoContentSuccess_IsAccepted(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "abc")

	require.NoError(t, c.Logout(context.Background()))
	require.NoError(t, c.DeleteSelf(context.Background()))
}
