// Package store persists the client's durable state: the bearer token and
// the preferences object. Both live as rows in a small local SQLite
// database so they survive restarts, the way browser storage survives
// page reloads.
//
// Ownership contract: only the session controller writes the token; the
// gateway holds a read-only view through its TokenSource.
package store

import (
	"context"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
)

// Fixed storage keys. Changing either orphans previously persisted state.
const (
	keyAccessToken = "access_token"
	keyPreferences = "preferences"
)

// Store is the durable client state. ReadToken after ClearToken, or before
// the first WriteToken, reports absent. No expiry inspection happens here;
// a stale token is simply rejected by the backend on first use.
type Store interface {
	ReadToken(ctx context.Context) (token string, ok bool, err error)
	WriteToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error

	ReadPreferences(ctx context.Context) (models.Preferences, error)
	WritePreferences(ctx context.Context, prefs models.Preferences) error
}
