package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/cvkeeper/internal/client/models"
	"github.com/dmitrijs2005/cvkeeper/internal/client/store"
	"github.com/dmitrijs2005/cvkeeper/internal/logging"
)

// Manager is the session controller: a process-wide singleton constructed at
// startup and handed to every consumer (guards, views) explicitly.
//
// Concurrency model: all state lives behind one mutex. Every state-clearing
// transition bumps an epoch counter; an operation captures the epoch when it
// starts and its result is discarded if the epoch moved while the network
// call was in flight. That is what lets a logout "win" against a slower
// login or profile fetch that resolves after it.
type Manager struct {
	gw    Gateway
	store store.Store
	nav   Navigator
	log   logging.Logger

	mu            sync.Mutex
	user          *models.UserProfile
	authenticated bool
	inflight      int
	initialized   bool
	epoch         uint64
	subs          map[int]chan Snapshot
	nextSub       int

	readyOnce sync.Once
	ready     chan struct{}
}

// NewManager wires the controller to its collaborators. The store is the
// only component the manager writes besides its own state; the gateway only
// ever reads the token back through its TokenSource.
func NewManager(gw Gateway, st store.Store, nav Navigator, log logging.Logger) *Manager {
	return &Manager{
		gw:    gw,
		store: st,
		nav:   nav,
		log:   log,
		subs:  make(map[int]chan Snapshot),
		ready: make(chan struct{}),
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		User:          m.user,
		Authenticated: m.authenticated,
		Loading:       m.inflight > 0,
		Initialized:   m.initialized,
	}
}

// Subscribe registers an observer. The returned channel carries coalesced
// snapshots: if the consumer lags, intermediate states are dropped and only
// the latest is delivered. The cancel func must be called when done.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- m.snapshotLocked()
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// notifyLocked pushes the current snapshot to every subscriber, replacing
// any undelivered previous one.
func (m *Manager) notifyLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Ready is closed once bootstrap has reached a definitive answer. Guards
// block on it before evaluating anything.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// AwaitReady blocks until bootstrap completes or ctx is done.
func (m *Manager) AwaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginOp marks an operation in flight and captures the current epoch.
// The returned func must run on every exit path; a deferred call is the
// expected shape so the loading flag can never stay stuck.
func (m *Manager) beginOp() (epoch uint64, done func()) {
	m.mu.Lock()
	m.inflight++
	epoch = m.epoch
	m.notifyLocked()
	m.mu.Unlock()

	return epoch, func() {
		m.mu.Lock()
		m.inflight--
		m.notifyLocked()
		m.mu.Unlock()
	}
}

// Bootstrap reconciles the persisted token with server-verified identity.
// It runs once at startup, never returns an error, and marks the session
// initialized exactly once, only after the outcome is fully applied.
func (m *Manager) Bootstrap(ctx context.Context) {
	defer m.finishInit()

	_, ok, err := m.store.ReadToken(ctx)
	if err != nil {
		m.log.Warn(ctx, "token store unreadable, starting anonymous", "error", err)
		return
	}
	if !ok {
		m.log.Debug(ctx, "no stored token, starting anonymous")
		return
	}

	epoch, done := m.beginOp()
	defer done()

	user, err := m.gw.FetchSelf(ctx)
	if err != nil {
		m.log.Info(ctx, "stored token rejected, starting anonymous", "error", err)
		m.clearLocal(ctx)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return
	}
	m.user = user
	m.authenticated = true
	m.notifyLocked()
}

// finishInit flips initialized and releases anyone blocked on Ready.
// The flag never reverts.
func (m *Manager) finishInit() {
	m.mu.Lock()
	m.initialized = true
	m.notifyLocked()
	m.mu.Unlock()
	m.readyOnce.Do(func() { close(m.ready) })
}

// Login authenticates and, on success, persists the token, populates the
// session from the response's embedded user (calling the self endpoint only
// when the response did not carry one), and navigates to the dashboard.
// On failure the session stays anonymous, the stored token is cleared, and
// the error propagates for display.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	epoch, done := m.beginOp()
	defer done()

	resp, err := m.gw.Login(ctx, email, password)
	if err != nil {
		m.clearLocal(ctx)
		return err
	}
	return m.completeAuth(ctx, epoch, resp)
}

// Register creates an account and logs the new user straight in, with the
// same success and failure behavior as Login.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	epoch, done := m.beginOp()
	defer done()

	resp, err := m.gw.Register(ctx, req)
	if err != nil {
		m.clearLocal(ctx)
		return err
	}
	return m.completeAuth(ctx, epoch, resp)
}

// completeAuth applies a successful auth response: token first, then user,
// under one critical section so no observer sees a half-applied login.
func (m *Manager) completeAuth(ctx context.Context, epoch uint64, resp *models.AuthResponse) error {
	user := resp.User
	if user.ID == "" {
		fetched, err := m.gw.FetchSelf(ctx)
		if err != nil {
			m.clearLocal(ctx)
			return err
		}
		user = *fetched
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if err := m.store.WriteToken(ctx, resp.AccessToken); err != nil {
		// The in-memory session is still correct for this process; the
		// login just will not survive a restart.
		m.log.Warn(ctx, "token not persisted", "error", err)
	}
	m.user = &user
	m.authenticated = true
	m.notifyLocked()
	m.mu.Unlock()

	m.nav.NavigateTo(ViewDashboard)
	return nil
}

// Logout ends the session. The server-side call is best-effort: its failure
// is logged and swallowed, and local state is cleared unconditionally so the
// client can never stay "logged in" because the network was down.
func (m *Manager) Logout(ctx context.Context) {
	_, done := m.beginOp()
	defer done()

	if err := m.gw.Logout(ctx); err != nil {
		m.log.Warn(ctx, "server-side logout failed, clearing local session anyway", "error", err)
	}
	m.clearLocal(ctx)
	m.nav.NavigateTo(ViewHome)
}

// DeleteAccount removes the account server-side, then tears the session
// down exactly like a logout. On failure nothing changes locally and the
// error propagates.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	_, done := m.beginOp()
	defer done()

	if err := m.gw.DeleteSelf(ctx); err != nil {
		return err
	}
	m.clearLocal(ctx)
	m.nav.NavigateTo(ViewHome)
	return nil
}

// clearLocal drops the token and the in-memory identity and bumps the epoch
// so any operation still in flight is discarded when it lands. Safe to call
// repeatedly; clearing an already-anonymous session is a no-op transition.
func (m *Manager) clearLocal(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	if err := m.store.ClearToken(ctx); err != nil {
		m.log.Warn(ctx, "token store clear failed", "error", err)
	}
	m.user = nil
	m.authenticated = false
	m.notifyLocked()
}

// UpdateProfile applies a partial edit; on success the cached user is
// replaced with the server's full record. On failure the cached user is
// untouched and the error propagates.
func (m *Manager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	epoch, done := m.beginOp()
	defer done()

	user, err := m.gw.UpdateSelf(ctx, upd)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || !m.authenticated {
		return ErrSuperseded
	}
	m.user = user
	m.notifyLocked()
	return nil
}

// RefreshProfile re-fetches the current user. An auth failure means the
// token died server-side, so the session is torn down like a logout.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	epoch, done := m.beginOp()
	defer done()

	user, err := m.gw.FetchSelf(ctx)
	if err != nil {
		m.clearLocal(ctx)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return ErrSuperseded
	}
	m.user = user
	m.authenticated = true
	m.notifyLocked()
	return nil
}

// ChangePassword rotates the password. No session state changes and no
// navigation happens on success.
func (m *Manager) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	_, done := m.beginOp()
	defer done()
	return m.gw.ChangePassword(ctx, req)
}

// RequestPasswordReset asks the backend to mail a reset token.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) (*models.MessageResponse, error) {
	_, done := m.beginOp()
	defer done()
	return m.gw.RequestPasswordReset(ctx, email)
}

// ResetPassword completes a reset with an emailed token.
func (m *Manager) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	_, done := m.beginOp()
	defer done()
	return m.gw.ResetPassword(ctx, req)
}
