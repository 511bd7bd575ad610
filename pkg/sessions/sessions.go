package sessions

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	// PinMaxRetries represents the maximum number of retries when generating a unique PIN
	PinMaxRetries = 100

	// SessionMaxAge is how long a session stays valid before the expiry sweep removes it
	SessionMaxAge = 24 * time.Hour
)

// PlayerSession binds a 4-digit PIN to one player's identity within a
// campaign/scenario so a separate device can act as that player.
type PlayerSession struct {
	GameID     int       `json:"gameId"`
	CampaignID int       `json:"campaignId"`
	PlayerID   int       `json:"playerId"`
	PlayerName string    `json:"playerName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SessionManager manages active player sessions keyed by PIN
type SessionManager struct {
	sessions     map[string]PlayerSession
	sessionsLock sync.RWMutex
}

// NewSessionManager creates a new SessionManager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]PlayerSession),
	}
}

func generatePin() string {
	return fmt.Sprintf("%d", 1000+rand.Intn(9000))
}

// CreateSessionWithUniquePin allocates a 4-digit PIN not currently in use
// and stores the session under it, with a maximum number of retries. PIN
// exhaustion is fatal for the request. Allocation and insertion happen in
// one critical section so concurrent issuances can never be handed the
// same PIN.
func (sm *SessionManager) CreateSessionWithUniquePin(session PlayerSession) (string, error) {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()

	for attempt := 0; attempt < PinMaxRetries; attempt++ {
		pin := generatePin()
		if _, ok := sm.sessions[pin]; !ok {
			sm.sessions[pin] = session
			return pin, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique PIN after %d attempts", PinMaxRetries)
}

// CreateSession stores a session under the given PIN, overwriting any
// existing session with the same PIN.
func (sm *SessionManager) CreateSession(pin string, session PlayerSession) {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()
	sm.sessions[pin] = session
}

// GetSession retrieves a session by PIN.
func (sm *SessionManager) GetSession(pin string) (PlayerSession, bool) {
	sm.sessionsLock.RLock()
	defer sm.sessionsLock.RUnlock()
	session, ok := sm.sessions[pin]
	return session, ok
}

// DeleteSession removes a session by PIN and reports whether it existed.
func (sm *SessionManager) DeleteSession(pin string) bool {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()
	if _, ok := sm.sessions[pin]; !ok {
		return false
	}
	delete(sm.sessions, pin)
	return true
}

// ClearSessionsForGame removes every session for a campaign/scenario pair.
// Used before reissuing PINs so a stale PIN from a previous round cannot
// resolve to a finished exchange.
func (sm *SessionManager) ClearSessionsForGame(campaignID, gameID int) {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()
	for pin, session := range sm.sessions {
		if session.CampaignID == campaignID && session.GameID == gameID {
			delete(sm.sessions, pin)
		}
	}
}

// CleanExpiredSessions removes sessions older than SessionMaxAge and
// returns how many were removed.
func (sm *SessionManager) CleanExpiredSessions() int {
	sm.sessionsLock.Lock()
	defer sm.sessionsLock.Unlock()
	now := time.Now()
	removed := 0
	for pin, session := range sm.sessions {
		if now.Sub(session.CreatedAt) > SessionMaxAge {
			delete(sm.sessions, pin)
			removed++
		}
	}
	return removed
}

// Sessions returns a snapshot of the active sessions keyed by PIN.
func (sm *SessionManager) Sessions() map[string]PlayerSession {
	sm.sessionsLock.RLock()
	defer sm.sessionsLock.RUnlock()
	sessions := make(map[string]PlayerSession, len(sm.sessions))
	for pin, session := range sm.sessions {
		sessions[pin] = session
	}
	return sessions
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.sessionsLock.RLock()
	defer sm.sessionsLock.RUnlock()
	return len(sm.sessions)
}
