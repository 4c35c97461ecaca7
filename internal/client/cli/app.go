// Package cli is the terminal client: a small REPL whose "pages" mirror the
// web app's view groups (public home, guest-only login, protected
// dashboard) and whose navigation runs through the same guards the web
// router would use.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/cvkeeper/internal/client/api"
	"github.com/dmitrijs2005/cvkeeper/internal/client/config"
	"github.com/dmitrijs2005/cvkeeper/internal/client/guard"
	"github.com/dmitrijs2005/cvkeeper/internal/client/session"
	"github.com/dmitrijs2005/cvkeeper/internal/client/store"
	"github.com/dmitrijs2005/cvkeeper/internal/logging"
)

// Prompts and password reads are indirections so tests can feed scripted
// input instead of a terminal.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// routes is the navigation table. Guard flags correspond to the web app's
// page groups.
var routes = map[session.View]guard.Route{
	session.ViewHome:      {View: session.ViewHome},
	session.ViewLogin:     {View: session.ViewLogin, GuestOnly: true},
	session.ViewDashboard: {View: session.ViewDashboard, Protected: true},
}

// App glues the session controller, the store, and the REPL together. It is
// also the session's Navigator: transitions land here as view switches.
type App struct {
	config  *config.Config
	session *session.Manager
	store   *store.SQLite
	log     logging.Logger
	reader  *bufio.Reader

	mu   sync.Mutex
	view session.View
}

// NewApp opens the local state database and wires the client stack.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := store.Open(ctx, filepath.Join(cfg.DataDir, "cvkeeper.db"))
	if err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		store:  st,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		view:   session.ViewHome,
	}

	gw := api.New(cfg.ServerBaseURL, cfg.RequestTimeout, st)
	app.session = session.NewManager(gw, st, app, log)
	return app, nil
}

// NavigateTo implements session.Navigator.
func (a *App) NavigateTo(view session.View) {
	a.mu.Lock()
	a.view = view
	a.mu.Unlock()
}

func (a *App) currentView() session.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Navigate moves to a named view, first consulting the guards. A denial
// lands on the guard's redirect target instead.
func (a *App) Navigate(ctx context.Context, name string) error {
	view := session.View(name)
	route, ok := routes[view]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	decision, err := guard.Resolve(ctx, a.session, route)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		printlnFn(fmt.Sprintf("Redirected to %s", decision.RedirectTo))
		a.NavigateTo(decision.RedirectTo)
		return nil
	}
	a.NavigateTo(view)
	return nil
}

// Run bootstraps the session in the background and enters the REPL. The
// guards make the REPL wait for bootstrap whenever navigation needs an
// answer before one exists.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	go a.session.Bootstrap(ctx)

	if err := a.session.AwaitReady(ctx); err != nil {
		return err
	}
	if a.session.Snapshot().Authenticated {
		a.NavigateTo(session.ViewDashboard)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
	return nil
}

func (a *App) isAuthenticated() bool {
	return a.session.Snapshot().Authenticated
}

// status renders the prompt decoration: current view plus the user's name
// when logged in.
func (a *App) status() string {
	snap := a.session.Snapshot()
	s := string(a.currentView())
	if snap.Authenticated && snap.User != nil {
		s = fmt.Sprintf("%s %s", snap.User.FullName(), s)
	}
	return "(" + s + ")"
}
