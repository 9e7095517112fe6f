package state

import (
	"maps"
	"sync"
)

type session struct {
	state  State
	fields map[string]any
}

func newSession(st State) *session {
	return &session{state: st, fields: make(map[string]any)}
}

// Store is an in-memory session registry keyed by user id.
// Concurrent updates for one user are last-write-wins.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*session)}
}

// Get returns a copy of the user's session, or an idle one if absent.
func (m *Store) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, Fields: map[string]any{}}
	}
	return Session{State: sess.state, Fields: maps.Clone(sess.fields)}
}

// SetState moves the user to st, creating the session if necessary.
func (m *Store) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).state = st
}

// SetField merges one collected value into the session, overwriting any prior value.
func (m *Store) SetField(userID int64, name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).fields[name] = value
}

// Reset wipes collected fields and moves the user to st in one step.
func (m *Store) Reset(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = newSession(st)
}

// Clear returns the user to idle with no collected fields.
func (m *Store) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active dialogue.
func (m *Store) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.state != StateIdle
}

// Len returns the number of tracked sessions.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Store) ensure(userID int64) *session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = newSession(StateIdle)
		m.sessions[userID] = sess
	}
	return sess
}
