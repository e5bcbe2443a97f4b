package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"

	"malonda/internal/models"
	"malonda/internal/repositories"
)

// Durable state keys. Kept stable so older state files keep working.
const (
	keyAccess          = "access"
	keyRefresh         = "refresh"
	keyUser            = "user"
	keyRole            = "role"
	keyRememberedEmail = "remembered_email"
)

// Store is the single owner of session state: the access/refresh token pair
// and the user profile. It persists through a StateRepository so the session
// survives process restarts, and hydrates from it on construction.
//
// The user profile is present iff an access token is present; the two are
// treated as a unit. No cryptographic verification happens here; the token
// is only decoded, never validated.
type Store struct {
	repo repositories.StateRepository

	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.User
}

// NewStore creates a Store and hydrates it from durable storage. A malformed
// stored user profile is treated as unauthenticated rather than an error.
func NewStore(repo repositories.StateRepository) *Store {
	s := &Store{repo: repo}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	access, err := s.repo.Get(keyAccess)
	if err != nil {
		return
	}
	rawUser, err := s.repo.Get(keyUser)
	if err != nil {
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		// Fail-safe default: corrupt state means no session.
		logrus.WithError(err).Warn("Stored user profile is malformed, treating as unauthenticated")
		return
	}

	s.access = access
	s.user = &user
	if refresh, err := s.repo.Get(keyRefresh); err == nil {
		s.refresh = refresh
	}
}

// Login persists the token pair and user profile and marks the session
// authenticated. Persistence failures are logged but do not fail the login:
// the in-memory session is authoritative for this process.
func (s *Store) Login(access, refresh string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write durably before updating memory so a reload after this call
	// always observes the new session.
	s.persist(keyAccess, access)
	s.persist(keyRefresh, refresh)
	s.persist(keyRole, user.Role)
	if raw, err := json.Marshal(user); err != nil {
		logrus.WithError(err).Error("Failed to serialize user profile")
	} else {
		s.persist(keyUser, string(raw))
	}

	s.access = access
	s.refresh = refresh
	s.user = user
}

func (s *Store) persist(key, value string) {
	if err := s.repo.Set(key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to persist session state")
	}
}

// Logout clears all session state, durable and in-memory, unconditionally.
// Notifying the backend is the auth service's concern; this never fails.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{keyAccess, keyRefresh, keyUser, keyRole} {
		if err := s.repo.Delete(key); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to clear session state")
		}
	}

	s.access = ""
	s.refresh = ""
	s.user = nil
}

// CurrentUser returns the authenticated user profile, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != "" && s.user != nil
}

// AccessToken returns the current access token, or "" when unauthenticated.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// RememberEmail durably stores the login email for prefilling the next
// login, or forgets it when email is empty.
func (s *Store) RememberEmail(email string) {
	if email == "" {
		if err := s.repo.Delete(keyRememberedEmail); err != nil {
			logrus.WithError(err).Error("Failed to forget remembered email")
		}
		return
	}
	s.persist(keyRememberedEmail, email)
}

// RememberedEmail returns the remembered login email, or "".
func (s *Store) RememberedEmail() string {
	email, err := s.repo.Get(keyRememberedEmail)
	if err != nil {
		return ""
	}
	return email
}

// TokenExpiry decodes the access token without verifying its signature and
// returns the exp claim. The second result is false when there is no token
// or no readable expiry.
func (s *Store) TokenExpiry() (time.Time, bool) {
	s.mu.RLock()
	access := s.access
	s.mu.RUnlock()
	if access == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
