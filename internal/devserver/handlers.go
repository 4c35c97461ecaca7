package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
	"github.com/dmitrijs2005/cvkeeper/internal/devserver/users"
)

const minPasswordLen = 8

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body")
		return
	}

	if msg := validateRegistration(req); msg != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := &users.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         string(models.RoleUser),
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}

	s.respondWithToken(w, r, user, http.StatusCreated)
}

func validateRegistration(req models.RegisterRequest) string {
	switch {
	case !strings.Contains(req.Email, "@"):
		return "A valid email address is required"
	case len(req.Password) < minPasswordLen:
		return "Password must be at least 8 characters"
	case req.Password != req.ConfirmPassword:
		return "Passwords do not match"
	case strings.TrimSpace(req.FirstName) == "":
		return "First name is required"
	case strings.TrimSpace(req.LastName) == "":
		return "Last name is required"
	}
	return ""
}

// handleLogin accepts the form-encoded credential fields the production
// backend's OAuth2 password flow expects: username and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := s.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect email or password")
			return
		}
		s.internalError(w, r, err)
		return
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect email or password")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Account is deactivated")
		return
	}

	s.respondWithToken(w, r, user, http.StatusOK)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, user *users.User, status int) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, status, models.AuthResponse{
		User:        toProfile(user),
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		s.revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProfile(currentUser(r)))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body")
		return
	}

	user := currentUser(r)
	if upd.Email != nil {
		if !strings.Contains(*upd.Email, "@") {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email address is required")
			return
		}
		user.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.FirstName != nil {
		user.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		user.LastName = strings.TrimSpace(*upd.LastName)
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email already registered")
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(user))
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.users.Delete(r.Context(), user.ID); err != nil {
		s.internalError(w, r, err)
		return
	}
	if token, ok := bearerToken(r); ok {
		s.revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body")
		return
	}

	user := currentUser(r)
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	user.PasswordHash = hash
	if err := s.users.Update(r.Context(), user); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Password changed"})
}

// handleRequestPasswordReset answers identically for known and unknown
// emails so the endpoint cannot be used to enumerate accounts. The minted
// token is logged instead of mailed; this is a development server.
func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body")
		return
	}

	if user, err := s.users.GetByEmail(r.Context(), req.Email); err == nil {
		token := uuid.NewString()
		s.mu.Lock()
		s.resets[token] = resetEntry{userID: user.ID, expires: time.Now().Add(s.cfg.ResetTokenTTL)}
		s.mu.Unlock()
		s.log.Info(r.Context(), "password reset token issued", "email", user.Email, "token", token)
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed request body")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Passwords do not match")
		return
	}

	s.mu.Lock()
	entry, ok := s.resets[req.Token]
	if ok {
		delete(s.resets, req.Token)
	}
	s.mu.Unlock()

	if !ok || time.Now().After(entry.expires) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid or expired reset token")
		return
	}

	user, err := s.users.GetByID(r.Context(), entry.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid or expired reset token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	user.PasswordHash = hash
	if err := s.users.Update(r.Context(), user); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Password has been reset"})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
