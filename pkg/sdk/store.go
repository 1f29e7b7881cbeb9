package sdk

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew is how close to its exp claim an access token is considered
// expired. Keeps the client from sending a token that dies in flight.
const expirySkew = 60 * time.Second

// TokenStore is the single owner of the session credentials and the cached
// user record. The read path is synchronous because request headers are
// built synchronously; implementations must degrade gracefully (empty / nil
// / no-op) when no persistence backend is available rather than returning
// errors.
type TokenStore interface {
	// AccessToken returns the stored access token, or "" when absent.
	AccessToken() string
	// RefreshToken returns the stored refresh token, or "" when absent.
	RefreshToken() string
	// SetTokens stores both tokens. Used after login or a refresh that
	// rotated the refresh token.
	SetTokens(access, refresh string)
	// SetAccessToken replaces only the access token. Used after a refresh
	// that did not rotate the refresh token.
	SetAccessToken(access string)
	// ClearTokens removes both tokens and the cached user record together.
	// This is the only way session state is fully torn down.
	ClearTokens()
	// SetUser caches the user record.
	SetUser(u *User)
	// User returns the cached user record, or nil. Implementations must
	// swallow malformed stored data and return nil instead of failing.
	User() *User
}

// HasTokens reports whether the store holds a complete credential pair.
func HasTokens(store TokenStore) bool {
	return store.AccessToken() != "" && store.RefreshToken() != ""
}

// IsTokenExpired decodes the access token's exp claim without verifying the
// signature and reports whether the token is absent, unparseable, or within
// expirySkew of expiry. Unparseable tokens count as expired.
func IsTokenExpired(token string) bool {
	if token == "" {
		return true
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= expirySkew
}

// MemoryStore is an in-process TokenStore for tests and contexts without a
// persistence backend (e.g. server-side rendering).
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *User
}

// NewMemoryStore returns an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryStore) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *MemoryStore) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.user = nil
}

func (s *MemoryStore) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *MemoryStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}
