package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"
)

var (
	// ErrSessionNotFound is returned for worker ids this process never issued.
	ErrSessionNotFound = errors.New("session not found")
)

// Session records an annotator's worker id. The id is opaque and carries
// no authentication.
type Session struct {
	WorkerID  string
	Active    bool
	StartedAt time.Time
}

var (
	sessions = make(map[string]*Session)
	mu       sync.Mutex
)

// NewSession issues a fresh worker id
func NewSession() Session {
	s := &Session{
		WorkerID:  xid.New().String(),
		Active:    true,
		StartedAt: time.Now().UTC(),
	}

	mu.Lock()
	sessions[s.WorkerID] = s
	mu.Unlock()

	return *s
}

// GetSession retrieves a session by worker id
func GetSession(workerID string) (Session, error) {
	mu.Lock()
	defer mu.Unlock()
	s, ok := sessions[workerID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	// Return a copy to avoid race conditions
	return *s, nil
}

// EndSession marks a session inactive
func EndSession(workerID string) error {
	mu.Lock()
	defer mu.Unlock()
	s, ok := sessions[workerID]
	if !ok {
		return ErrSessionNotFound
	}
	s.Active = false
	return nil
}
