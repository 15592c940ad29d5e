package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the token issued at login. One session per terminal process;
// every backend client reads it through the TokenSource interfaces.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      *User
	expiresAt time.Time
}

func NewSession() *Session { return &Session{} }

// Set installs the token and user returned by the backend. The token's exp
// claim is read without signature verification: the signing key belongs to
// the backend, the terminal only needs the deadline.
func (s *Session) Set(token string, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.expiresAt = time.Time{}

	if token == "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.expiresAt = exp.Time
		}
	}
}

// Token returns the bearer token, or "" when there is no live session.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return ""
	}
	return s.token
}

// User returns the logged-in operator, nil before login.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Clear drops the session, e.g. on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.expiresAt = time.Time{}
}
