package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

const defaultSessionDuration = 12 * time.Hour

type SessionManagerInterface interface {
	GenerateSessionToken(userID int64, duration time.Duration) (string, error)
	VerifySessionToken(sessionToken string) (int64, error)
	DeleteSessionToken(sessionToken string)
	CleanupExpired()
}

type sessionEntry struct {
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionManager keeps sessions server side, so logout revokes a session
// immediately even though the cookie carries a signed token.
type SessionManager struct {
	mu     sync.RWMutex
	tokens map[string]sessionEntry
}

func NewSessionManager() SessionManagerInterface {
	return &SessionManager{
		tokens: make(map[string]sessionEntry),
	}
}

func (sm *SessionManager) GenerateSessionToken(userID int64, duration time.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}

	token := hex.EncodeToString(tokenBytes)
	now := time.Now()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.tokens[token] = sessionEntry{
		UserID:    userID,
		ExpiresAt: now.Add(duration),
		CreatedAt: now,
	}
	return token, nil
}

func (sm *SessionManager) VerifySessionToken(sessionToken string) (int64, error) {
	sm.mu.RLock()
	entry, exists := sm.tokens[sessionToken]
	sm.mu.RUnlock()

	if !exists {
		return 0, ErrInvalidSessionToken
	}
	if time.Now().After(entry.ExpiresAt) {
		return 0, ErrExpiredSessionToken
	}
	return entry.UserID, nil
}

func (sm *SessionManager) DeleteSessionToken(sessionToken string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.tokens, sessionToken)
}

// CleanupExpired drops lapsed sessions. The scheduler calls it periodically.
func (sm *SessionManager) CleanupExpired() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for token, entry := range sm.tokens {
		if time.Now().After(entry.ExpiresAt) {
			delete(sm.tokens, token)
		}
	}
}
