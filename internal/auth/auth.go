// Package auth implements the demo login: a single configured credential pair
// exchanged for a random bearer token held in memory. Tokens do not survive a
// restart.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// DefaultSessionTTL bounds how long a token stays valid.
const DefaultSessionTTL = 24 * time.Hour

type session struct {
	username  string
	expiresAt time.Time
}

// Authenticator checks credentials and tracks issued tokens.
type Authenticator struct {
	mu       sync.Mutex
	username string
	password string
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]session
}

func New(username, password string) *Authenticator {
	return &Authenticator{
		username: username,
		password: password,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

// Login exchanges the credential pair for a bearer token.
func (a *Authenticator) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[token] = session{
		username:  username,
		expiresAt: a.now().Add(a.ttl),
	}
	return token, nil
}

// Verify reports whether the token belongs to a live session and returns the
// session's username.
func (a *Authenticator) Verify(token string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[token]
	if !ok {
		return "", ErrInvalidToken
	}
	if a.now().After(s.expiresAt) {
		delete(a.sessions, token)
		return "", ErrInvalidToken
	}
	return s.username, nil
}

// Logout invalidates a token. Unknown tokens are ignored.
func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
