// session.go — keeps live stepping sessions for interactive clients.
//
// A session owns one Interpreter plus bookkeeping; the manager hands out
// opaque ids so a REPL or service front end can step several programs
// concurrently. Sessions idle past their TTL are reclaimed by Sweep.
package stepscope

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// Session is one live stepping run.
type Session struct {
	ID       string
	Interp   *Interpreter
	Created  time.Time
	LastUsed time.Time
}

// SessionManager tracks sessions by id. Zero value is not usable; call
// NewSessionManager.
type SessionManager struct {
	mu   sync.Mutex
	ttl  time.Duration
	byID map[string]*Session
	now  func() time.Time // test seam
}

// NewSessionManager returns a manager reclaiming sessions idle longer
// than ttl (ttl <= 0 disables reclamation).
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:  ttl,
		byID: map[string]*Session{},
		now:  time.Now,
	}
}

// Create builds an interpreter for src and registers a session for it.
func (m *SessionManager) Create(src string) (*Session, error) {
	it, err := NewInterpreter(src)
	if err != nil {
		return nil, err
	}
	now := m.now()
	s := &Session{
		ID:       uuid.NewString(),
		Interp:   it,
		Created:  now,
		LastUsed: now,
	}
	m.mu.Lock()
	m.byID[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session for id, refreshing its idle clock.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("no session %q", id)
	}
	s.LastUsed = m.now()
	return s, nil
}

// End removes the session for id. Ending an unknown id is a no-op.
func (m *SessionManager) End(id string) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Sweep drops sessions idle past the TTL and reports how many it dropped.
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.byID {
		if s.LastUsed.Before(cutoff) {
			delete(m.byID, id)
			n++
		}
	}
	return n
}

//// END_OF_PUBLIC
