// Package gate implements the role-scoped navigation gate: a two-state
// machine deciding, per navigation, whether the requested route is
// served, swapped for the login screen, or swapped for home.
package gate

import (
	"log/slog"
	"sync"

	"github.com/tvet-mis/console/internal/domain/route"
)

// State is the gate's authentication state.
type State int

const (
	// Unauthenticated serves only the public route set.
	Unauthenticated State = iota
	// Authenticated serves only the private route set.
	Authenticated
)

// String returns the state name for logs.
func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Decision is the outcome of evaluating a navigation.
type Decision struct {
	// State is the gate state the decision was made under, after any
	// lazy expiry downgrade.
	State State
	// Route is the path actually served.
	Route string
	// Redirected is true when Route differs from the requested path.
	Redirected bool
}

// SessionChecker answers whether a live, non-expired session is held.
// The gate calls it on every evaluation; expiry is detected lazily at
// the next navigation rather than by a background timer.
type SessionChecker interface {
	IsAuthenticated() bool
}

// Resetter drops in-memory state tied to a session that is no longer
// valid. The gate invokes every registered Resetter when it observes
// an expiry downgrade, replacing the stale stores wholesale.
type Resetter interface {
	Reset()
}

// Gate is the navigation gate. Transitions happen only through
// OnLogin, OnLogout, and the lazy expiry check inside Evaluate.
type Gate struct {
	mu       sync.Mutex
	state    State
	session  SessionChecker
	resetter []Resetter
	logger   *slog.Logger
	observer func(Decision)
}

// Option configures a Gate.
type Option func(*Gate)

// WithObserver registers a callback invoked with every decision, after
// it is made. Used for metrics and the audit trail.
func WithObserver(fn func(Decision)) Option {
	return func(g *Gate) { g.observer = fn }
}

// New creates a gate. The initial state is computed from the session
// checker, so a valid persisted session starts authenticated.
func New(session SessionChecker, logger *slog.Logger, resetters []Resetter, opts ...Option) *Gate {
	g := &Gate{
		state:    Unauthenticated,
		session:  session,
		resetter: resetters,
		logger:   logger,
	}
	if session.IsAuthenticated() {
		g.state = Authenticated
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current gate state without re-checking the session.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Evaluate decides the navigation to path.
//
// Unauthenticated: public routes are served; everything else redirects
// to the login route. Authenticated: private routes are served;
// everything else redirects home. Unknown routes never escape the
// gate's own route space.
//
// Before deciding, an authenticated gate re-checks the session. A
// token that expired since the last navigation downgrades the gate and
// resets the dependent stores; the requested route is then evaluated
// under the downgraded state, so the caller lands on the login screen
// in the same navigation.
func (g *Gate) Evaluate(path string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Authenticated && !g.session.IsAuthenticated() {
		g.logger.Info("session no longer valid, tearing down authenticated state")
		g.downgradeLocked()
	}

	var d Decision
	d.State = g.state
	if g.state == Authenticated {
		if route.IsPrivate(path) {
			d.Route = path
		} else {
			d.Route = route.Home
			d.Redirected = true
		}
	} else {
		if route.IsPublic(path) {
			d.Route = path
		} else {
			d.Route = route.Login
			d.Redirected = true
		}
	}

	if d.Redirected {
		g.logger.Debug("navigation redirected",
			"requested", path, "served", d.Route, "state", d.State.String())
	}
	if g.observer != nil {
		g.observer(d)
	}
	return d
}

// OnLogin transitions to authenticated. The caller has already
// installed the session.
func (g *Gate) OnLogin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Authenticated
}

// OnLogout transitions to unauthenticated and resets dependent stores.
// The session store has already cleared durable state.
func (g *Gate) OnLogout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.downgradeLocked()
}

func (g *Gate) downgradeLocked() {
	g.state = Unauthenticated
	for _, r := range g.resetter {
		r.Reset()
	}
}
