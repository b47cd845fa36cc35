package dashboard

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type session struct {
	state   State
	expires time.Time
}

// Sessions keeps one State per signed-in admin session. Entries past their
// session expiry are swept on write.
type Sessions struct {
	mu        sync.Mutex
	states    map[string]session
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewSessions returns an empty session table. ttl bounds entries whose
// expiry was never given, such as sessions signed in before a restart.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{states: make(map[string]session), ttl: ttl, now: time.Now}
}

// Get returns the state of sid, or the initial state.
func (s *Sessions) Get(sid string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.states[sid]
	if !ok || s.now().After(e.expires) {
		return New()
	}
	return e.state
}

// Update applies fn to the state of sid under the table lock and stores the
// result. fn must not block on I/O.
func (s *Sessions) Update(sid string, fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	e, ok := s.states[sid]
	if !ok {
		e = session{state: New(), expires: now.Add(s.ttl)}
	}
	e.state = fn(e.state)
	s.states[sid] = e
	return e.state
}

// Put stores st for sid until expires.
func (s *Sessions) Put(sid string, expires time.Time, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	s.states[sid] = session{state: st, expires: expires}
}

// Drop forgets sid, on sign-out.
func (s *Sessions) Drop(sid string) {
	s.mu.Lock()
	delete(s.states, sid)
	s.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *Sessions) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	for sid, e := range s.states {
		if now.After(e.expires) {
			delete(s.states, sid)
		}
	}
	s.lastSweep = now
}
