package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
)

// SignupInput is the registration payload. Accounts start in the PENDING
// approval state; signing up does not establish a session.
type SignupInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Mobile       string `json:"mobile,omitempty"`
	AadharNumber string `json:"aadharNumber,omitempty"`
	VillageID    string `json:"villageId,omitempty"`
}

// Session exposes the authentication read model and the mutating operations
// the rest of the application uses. Derived facts (IsAuthenticated, role
// membership, permission checks) are recomputed from the cached user record
// whenever it changes. Safe for concurrent use.
type Session struct {
	client *Client

	mu   sync.RWMutex
	user *User
}

// NewSession wraps a client, picking up any user record already cached in
// the client's token store (so a session survives process restarts when the
// store is persistent).
func NewSession(client *Client) *Session {
	return &Session{
		client: client,
		user:   client.Store().User(),
	}
}

// Client returns the underlying API client.
func (s *Session) Client() *Client {
	return s.client
}

// Login authenticates with email and password. On success both tokens and
// the user record are persisted; on failure the server's message is returned
// and stored state is left untouched. A 401 here means bad credentials, not
// an expired session, so the refresh flow is never involved.
func (s *Session) Login(ctx context.Context, email, password string) error {
	env := s.client.Post(ctx, "/auth/login",
		map[string]string{"email": email, "password": password},
		RequestOptions{Public: true})
	if err := env.Err(); err != nil {
		return err
	}

	var payload struct {
		AccessToken  string          `json:"accessToken"`
		RefreshToken string          `json:"refreshToken"`
		User         json.RawMessage `json:"user"`
	}
	if err := env.DecodeData(&payload); err != nil {
		return &APIError{Code: CodeParseError, Message: "malformed login response"}
	}
	user, err := DecodeUser(payload.User)
	if err != nil {
		return &APIError{Code: CodeParseError, Message: "malformed user record in login response"}
	}

	store := s.client.Store()
	store.SetTokens(payload.AccessToken, payload.RefreshToken)
	store.SetUser(user)
	s.setUser(user)
	return nil
}

// Signup registers a new account and returns the server's confirmation
// message. No tokens are stored: activation is gated by the approval
// workflow.
func (s *Session) Signup(ctx context.Context, input SignupInput) (string, error) {
	env := s.client.Post(ctx, "/auth/signup", input, RequestOptions{Public: true})
	if err := env.Err(); err != nil {
		return "", err
	}
	return env.Message, nil
}

// Logout revokes the session server-side on a best-effort basis (network
// failures are swallowed) and then unconditionally clears the stored
// credentials and user record.
func (s *Session) Logout(ctx context.Context) {
	if HasTokens(s.client.Store()) {
		_ = s.client.Post(ctx, "/auth/logout",
			map[string]string{"refreshToken": s.client.Store().RefreshToken()},
			RequestOptions{})
	}
	s.client.Store().ClearTokens()
	s.setUser(nil)
}

// RefreshUser re-fetches the current-user projection and updates the cached
// record. No-op when no tokens are present.
func (s *Session) RefreshUser(ctx context.Context) error {
	if !HasTokens(s.client.Store()) {
		return nil
	}
	return s.fetchUser(ctx)
}

// Bootstrap revalidates a session restored from persistent storage. When
// tokens exist the current-user profile is fetched eagerly; if that fails
// the session is cleared rather than left holding stale tokens with no
// confirmed user.
func (s *Session) Bootstrap(ctx context.Context) error {
	if !HasTokens(s.client.Store()) {
		return nil
	}
	if err := s.fetchUser(ctx); err != nil {
		s.client.Store().ClearTokens()
		s.setUser(nil)
		return err
	}
	return nil
}

func (s *Session) fetchUser(ctx context.Context) error {
	env := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, RequestOptions{})
	if err := env.Err(); err != nil {
		return err
	}
	user, err := DecodeUser(env.Data)
	if err != nil {
		return &APIError{Code: CodeParseError, Message: "malformed user record"}
	}
	s.client.Store().SetUser(user)
	s.setUser(user)
	return nil
}

func (s *Session) setUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// User returns the cached user record, or nil when not authenticated.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether tokens and a confirmed user record are
// both present.
func (s *Session) IsAuthenticated() bool {
	return HasTokens(s.client.Store()) && s.User() != nil
}

// HasRole reports role membership by name, case-insensitively.
func (s *Session) HasRole(name string) bool {
	return s.User().HasRole(name)
}

// HasPermission checks the flattened permission set.
func (s *Session) HasPermission(p string) bool {
	return s.User().HasPermission(p)
}

// HasAnyPermission reports whether the user holds any of the given
// permissions.
func (s *Session) HasAnyPermission(perms ...string) bool {
	return s.User().HasAnyPermission(perms...)
}

// IsApproved reports whether the account cleared the approval workflow.
func (s *Session) IsApproved() bool {
	return s.User().IsApproved()
}
