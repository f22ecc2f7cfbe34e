// Package guard decides whether the management shell may render. Given the
// current session it either admits the protected region or sends the user
// back to the login screen, and it owns the pending-verification state in
// between.
package guard

import (
	"context"
	"sync"

	"github.com/theeverestnews/newsdesk/internal/logging"
	"github.com/theeverestnews/newsdesk/internal/services"
	"github.com/theeverestnews/newsdesk/internal/session"
)

// Status is the guard's current decision.
type Status int

const (
	// StatusPending means role verification is outstanding. Nothing but a
	// loading indicator may render in this state, so privileged content
	// never flashes before the decision lands.
	StatusPending Status = iota
	// StatusAdmitted means the protected region may render.
	StatusAdmitted
	// StatusDenied means the user goes back to the login entry point.
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAdmitted:
		return "admitted"
	case StatusDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Callbacks are the explicit render hooks the guard drives. They replace
// ambient lifecycle effects: the guard calls them, nothing else does.
type Callbacks struct {
	OnPending func()
	OnAdmit   func()
	OnDeny    func()
}

// Guard re-evaluates from pending on every Mount; there is no terminal
// state. A logout followed by navigating back simply mounts it again.
type Guard struct {
	auth  services.AuthService
	state *session.State
	log   logging.Logger
	cb    Callbacks

	mu     sync.Mutex
	status Status
	gen    uint64
}

func New(auth services.AuthService, state *session.State, log logging.Logger, cb Callbacks) *Guard {
	return &Guard{auth: auth, state: state, log: log, cb: cb}
}

// Status returns the current decision.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Mount runs one admit/deny evaluation.
//
// It enters pending, then: with no token at all it denies outright, without
// a network call; otherwise it verifies the role and admits only when the
// session ends up flagged as admin. A verification that resolves after the
// region was unmounted (or mounted again) is discarded, so a torn-down view
// is never updated.
func (g *Guard) Mount(ctx context.Context) Status {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.status = StatusPending
	g.mu.Unlock()

	if g.cb.OnPending != nil {
		g.cb.OnPending()
	}

	if g.state.Current().Token == "" {
		return g.resolve(ctx, gen, StatusDenied)
	}

	err := g.auth.VerifyRole(ctx)

	status := StatusDenied
	if err == nil && g.state.Current().Identity.IsAdmin {
		status = StatusAdmitted
	}
	return g.resolve(ctx, gen, status)
}

// Unmount invalidates any in-flight evaluation and cancels a pending
// non-admin redirect tied to this region.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.gen++
	g.status = StatusPending
	g.mu.Unlock()

	g.auth.CancelPendingRedirect()
}

func (g *Guard) resolve(ctx context.Context, gen uint64, status Status) Status {
	g.mu.Lock()
	if g.gen != gen {
		// A newer mount (or an unmount) superseded this evaluation.
		stale := g.status
		g.mu.Unlock()
		g.log.Info(ctx, "discarding stale guard resolution", "resolved", status.String())
		return stale
	}
	g.status = status
	g.mu.Unlock()

	g.log.Info(ctx, "guard resolved", "status", status.String())

	switch status {
	case StatusAdmitted:
		if g.cb.OnAdmit != nil {
			g.cb.OnAdmit()
		}
	case StatusDenied:
		if g.cb.OnDeny != nil {
			g.cb.OnDeny()
		}
	}
	return status
}
