// Package session holds the process-wide record of the current authenticated
// identity. All mutation funnels through State.Apply and State.Reset so no
// two components can diverge on what the session looks like.
package session

import "sync"

// Identity describes who is logged in. IsAdmin is derived state: it is only
// ever set after a role verification round-trip confirmed the admin role for
// the current token, never asserted locally.
type Identity struct {
	Username string
	IsAdmin  bool
}

// Session is the current session value. An empty Token means logged out.
type Session struct {
	Identity Identity
	Token    string
}

// Patch is a partial update. Nil fields leave the current value untouched,
// so concurrent writers cannot clobber fields they did not mean to change.
type Patch struct {
	Username *string
	IsAdmin  *bool
	Token    *string
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building patches inline.
func Bool(b bool) *bool { return &b }

// State is the shared session holder. Constructed once per process and passed
// by reference to every consumer; subscribers are notified synchronously on
// every change.
type State struct {
	mu         sync.Mutex
	current    Session
	subs       map[int]func(Session)
	nextSubID  int
	resetHooks []func()
}

func NewState() *State {
	return &State{subs: make(map[int]func(Session))}
}

// Current returns a copy of the session value.
func (s *State) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Apply merges the patch into the session and notifies subscribers.
func (s *State) Apply(p Patch) {
	s.mu.Lock()
	if p.Username != nil {
		s.current.Identity.Username = *p.Username
	}
	if p.IsAdmin != nil {
		s.current.Identity.IsAdmin = *p.IsAdmin
	}
	if p.Token != nil {
		s.current.Token = *p.Token
	}
	cur := s.current
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cur)
	}
}

// Reset restores the empty session, runs the registered reset hooks (the
// credential store wipe is wired here), and notifies subscribers.
func (s *State) Reset() {
	s.mu.Lock()
	s.current = Session{}
	hooks := make([]func(), len(s.resetHooks))
	copy(hooks, s.resetHooks)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	for _, fn := range subs {
		fn(Session{})
	}
}

// Subscribe registers fn to run on every change. The returned function
// removes the subscription.
func (s *State) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnReset registers fn to run whenever the session is reset.
func (s *State) OnReset(fn func()) {
	s.mu.Lock()
	s.resetHooks = append(s.resetHooks, fn)
	s.mu.Unlock()
}

// snapshotSubs must be called with the mutex held. Subscribers run outside
// the lock so they may read State without deadlocking.
func (s *State) snapshotSubs() []func(Session) {
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}
