// Package api implements the HTTP gateway to the profile backend. It is the
// only package in the client that performs network calls; everything above
// it sees typed results and normalized *apierr.Error failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/cvkeeper/internal/client/apierr"
	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

const basePath = "/api/v1"

// TokenSource yields the current bearer token, if any. The gateway only ever
// reads the token; writing it is the session controller's job.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client is the auth gateway. Each method performs exactly one round trip.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New constructs a gateway for the backend at baseURL (scheme://host[:port],
// no trailing slash required).
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Register creates a new account. The backend validates input and rejects
// duplicate emails; those rejections surface as validation errors carrying
// the backend's own message.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out, "Registration failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password. The credential endpoint
// expects a form-encoded body with username/password field names.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out models.AuthResponse
	if err := c.send(req, &out, "Login failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the backend to invalidate the current token. Callers treat
// this as best-effort; the error is returned for logging only.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, "Logout failed")
}

// FetchSelf returns the profile of the token's owner.
func (c *Client) FetchSelf(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &out, "Failed to fetch user data"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSelf applies a partial profile edit and returns the full updated
// record. Fields left nil in upd are not touched server-side.
func (c *Client) UpdateSelf(ctx context.Context, upd models.ProfileUpdate) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.doJSON(ctx, http.MethodPut, "/me", upd, &out, "Failed to update profile"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSelf permanently removes the account that owns the current token.
func (c *Client) DeleteSelf(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/me", nil, nil, "Failed to delete account")
}

// ChangePassword rotates the password of the logged-in account.
func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/change-password", req, &out, "Failed to change password"); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the backend to mail a reset token. The backend
// answers the same way for known and unknown emails.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*models.MessageResponse, error) {
	body := map[string]string{"email": email}
	var out models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/request-password-reset", body, &out, "Failed to send reset email"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword completes a password reset using an emailed token.
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/reset-password", req, &out, "Failed to reset password"); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON marshals body (when non-nil), performs the request, and decodes a
// 2xx response into out (when non-nil). Failures come back normalized.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out, fallback)
}

// newRequest builds a request against the backend and attaches the bearer
// header when a token is available. A missing token just omits the header;
// the backend decides whether that is acceptable for the endpoint.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if tok, ok := c.tokens.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any, fallback string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apierr.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, fallback)
	}
	if out == nil {
		// Drain so the transport can reuse the connection.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierr.New(resp.StatusCode, fallback, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// errorEnvelope matches both error body shapes the backend produces:
// {error:{code,message,details}} and the flatter {message}.
type errorEnvelope struct {
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Message string `json:"message"`
}

// decodeError extracts the most specific message available from a non-2xx
// response: error.message, then message, then the operation fallback.
func decodeError(resp *http.Response, fallback string) *apierr.Error {
	msg := fallback
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil {
			switch {
			case env.Error != nil && env.Error.Message != "":
				msg = env.Error.Message
			case env.Message != "":
				msg = env.Message
			}
		}
	}
	return apierr.New(resp.StatusCode, msg, nil)
}
