package workspace

import (
	"sort"
	"sync"
	"time"

	"github.com/ethdomperin2018/ai-assist/internal/domain"
)

// SessionStore holds the live roster of every request with at least one
// participant. A session is removed as soon as its roster becomes empty.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.WorkspaceState
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*domain.WorkspaceState)}
}

// Ensure returns the session for requestID, creating it when absent
func (s *SessionStore) Ensure(requestID int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[requestID]; !ok {
		s.sessions[requestID] = &domain.WorkspaceState{
			RequestID:    requestID,
			ActiveUsers:  []domain.ActiveUser{},
			LastActivity: now,
		}
	}
}

// Touch refreshes a present user's activity and reports whether the user was found
func (s *SessionStore) Touch(requestID, userID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[requestID]
	if !ok {
		return false
	}
	ws.LastActivity = now
	for i := range ws.ActiveUsers {
		if ws.ActiveUsers[i].ID == userID {
			ws.ActiveUsers[i].LastActivity = now
			return true
		}
	}
	return false
}

// Add appends a user to the roster unless already present, and returns the roster
func (s *SessionStore) Add(requestID int64, user domain.ActiveUser, now time.Time) []domain.ActiveUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[requestID]
	if !ok {
		ws = &domain.WorkspaceState{RequestID: requestID}
		s.sessions[requestID] = ws
	}
	ws.LastActivity = now
	for i := range ws.ActiveUsers {
		if ws.ActiveUsers[i].ID == user.ID {
			ws.ActiveUsers[i].LastActivity = now
			return copyRoster(ws.ActiveUsers)
		}
	}
	ws.ActiveUsers = append(ws.ActiveUsers, user)
	return copyRoster(ws.ActiveUsers)
}

// Roster returns a copy of the participants of requestID
func (s *SessionStore) Roster(requestID int64) []domain.ActiveUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[requestID]
	if !ok {
		return []domain.ActiveUser{}
	}
	return copyRoster(ws.ActiveUsers)
}

// Remove drops userID from the roster of requestID. It returns the remaining
// roster and whether a session still exists afterwards.
func (s *SessionStore) Remove(requestID, userID int64, now time.Time) ([]domain.ActiveUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[requestID]
	if !ok {
		return nil, false
	}

	kept := ws.ActiveUsers[:0]
	for _, u := range ws.ActiveUsers {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	ws.ActiveUsers = kept
	ws.LastActivity = now

	if len(ws.ActiveUsers) == 0 {
		delete(s.sessions, requestID)
		return nil, false
	}
	return copyRoster(ws.ActiveUsers), true
}

// Get returns a snapshot of one session
func (s *SessionStore) Get(requestID int64) (*domain.WorkspaceState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[requestID]
	if !ok {
		return nil, false
	}
	snapshot := *ws
	snapshot.ActiveUsers = copyRoster(ws.ActiveUsers)
	return &snapshot, true
}

// All returns snapshots of every session ordered by request id
func (s *SessionStore) All() []domain.WorkspaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]domain.WorkspaceState, 0, len(s.sessions))
	for _, ws := range s.sessions {
		snapshot := *ws
		snapshot.ActiveUsers = copyRoster(ws.ActiveUsers)
		states = append(states, snapshot)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].RequestID < states[j].RequestID })
	return states
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func copyRoster(users []domain.ActiveUser) []domain.ActiveUser {
	out := make([]domain.ActiveUser, len(users))
	copy(out, users)
	return out
}
