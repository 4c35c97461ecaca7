package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
	"github.com/dmitrijs2005/cvkeeper/internal/devserver/users"
	"github.com/dmitrijs2005/cvkeeper/internal/logging"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// Server hosts the identity API. Logged-out tokens and outstanding reset
// tokens are held in memory; they are development conveniences, not durable
// state.
type Server struct {
	cfg    *Config
	log    logging.Logger
	users  users.Store
	tokens *TokenIssuer

	mu      sync.Mutex
	revoked map[string]struct{}
	resets  map[string]resetEntry
}

type resetEntry struct {
	userID  string
	expires time.Time
}

// New assembles a Server around the given user store.
func New(cfg *Config, store users.Store, log logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		users:   store,
		tokens:  NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL),
		revoked: make(map[string]struct{}),
		resets:  make(map[string]resetEntry),
	}
}

// Router builds the HTTP surface described in the client's gateway: the
// /api/v1 identity endpoints, JSON everywhere except the form-encoded
// login.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/request-password-reset", s.handleRequestPasswordReset)
		r.Post("/auth/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.withAuth)
			r.Post("/auth/logout", s.handleLogout)
			r.Post("/auth/change-password", s.handleChangePassword)
			r.Get("/me", s.handleGetMe)
			r.Put("/me", s.handleUpdateMe)
			r.Delete("/me", s.handleDeleteMe)
		})
	})
	return r
}

// withAuth authenticates the bearer token, rejects revoked ones, loads the
// account, and stashes it in the request context.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authentication token")
			return
		}
		if s.isRevoked(token) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token has been revoked")
			return
		}

		userID, err := s.tokens.UserID(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return token, token != ""
}

func currentUser(r *http.Request) *users.User {
	u, _ := r.Context().Value(ctxKeyUser).(*users.User)
	return u
}

func (s *Server) revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

// toProfile converts a stored account into the wire profile shape.
func toProfile(u *users.User) models.UserProfile {
	return models.UserProfile{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       models.Role(u.Role),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// errorEnvelope is the error body shape the client expects.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}
