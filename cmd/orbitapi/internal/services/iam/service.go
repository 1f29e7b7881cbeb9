// Package iam implements the identity operations behind the auth endpoints:
// signup with admin approval, password login, refresh token rotation,
// logout revocation, and profile assembly with flattened permissions.
package iam

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/repository"
)

// DefaultRole is assigned to every newly registered account.
const DefaultRole = "resident"

var (
	ErrEmailTaken          = errors.New("an account with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountRejected     = errors.New("account registration was rejected")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
	ErrInvalidInput        = errors.New("invalid input")
)

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	FullName     string
	Email        string
	Password     string
	Mobile       string
	AadharNumber string
	VillageID    string
}

// TokenPair is the result of a successful login or refresh.
// RefreshToken is empty on refresh unless the token was rotated.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RoleInfo is the wire shape of an assigned role.
type RoleInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Profile is the wire shape of the authenticated user record.
type Profile struct {
	UserID         string     `json:"userId"`
	Email          string     `json:"email"`
	FullName       string     `json:"fullName"`
	Mobile         string     `json:"mobile,omitempty"`
	AadharNumber   string     `json:"aadharNumber,omitempty"`
	ApprovalStatus string     `json:"approvalStatus"`
	Roles          []RoleInfo `json:"roles"`
	AllPermissions []string   `json:"allPermissions"`
}

// Service implements the portal's identity operations.
type Service struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tokens repository.RefreshTokenRepository
	issuer *auth.TokenIssuer

	refreshTTL   time.Duration
	rotateWindow time.Duration
}

// Dependencies wires the repositories and token issuer into the service.
type Dependencies struct {
	Users  repository.UserRepository
	Roles  repository.RoleRepository
	Tokens repository.RefreshTokenRepository
	Issuer *auth.TokenIssuer
}

// Config controls refresh token policy.
type Config struct {
	RefreshTTL   time.Duration
	RotateWindow time.Duration
}

// NewService creates the IAM service.
func NewService(deps Dependencies, cfg Config) *Service {
	return &Service{
		users:        deps.Users,
		roles:        deps.Roles,
		tokens:       deps.Tokens,
		issuer:       deps.Issuer,
		refreshTTL:   cfg.RefreshTTL,
		rotateWindow: cfg.RotateWindow,
	}
}

// Signup registers a new account in PENDING state and assigns the default role.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)

	if input.FullName == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: full name and password are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          input.Email,
		FullName:       input.FullName,
		Mobile:         input.Mobile,
		AadharNumber:   input.AadharNumber,
		VillageID:      input.VillageID,
		PasswordHash:   hash,
		ApprovalStatus: models.ApprovalPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("default role lookup: %w", err)
	}
	if err := s.roles.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a fresh token pair.
// Rejected accounts are refused; pending accounts may log in but see
// their PENDING status in the profile.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	if user.IsRejected() {
		return nil, nil, ErrAccountRejected
	}

	accessToken, _, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, err := s.mintRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		return nil, nil, err
	}

	return user, &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh redeems a refresh token for a new access token. When the refresh
// token is within the rotation window of its expiry, it is replaced and the
// new one returned alongside the access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	record, err := s.tokens.GetByHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	now := time.Now()
	if !record.Active(now) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if user.IsRejected() {
		return nil, ErrInvalidRefreshToken
	}

	accessToken, _, err := s.issuer.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{AccessToken: accessToken}

	if record.ExpiresAt.Sub(now) <= s.rotateWindow {
		rotated, err := s.mintRefreshToken(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.tokens.Revoke(ctx, record.ID); err != nil {
			return nil, err
		}
		pair.RefreshToken = rotated
	}

	return pair, nil
}

// Logout revokes the presented refresh token and denylists the access
// token's JTI so it cannot be replayed for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, claims *auth.AccessClaims, refreshToken string) error {
	if refreshToken != "" {
		record, err := s.tokens.GetByHash(ctx, auth.HashRefreshToken(refreshToken))
		if err == nil {
			if err := s.tokens.Revoke(ctx, record.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	if claims != nil && claims.ExpiresAt != nil {
		s.issuer.RevokeJTI(claims.ID, claims.ExpiresAt.Time)
	}
	return nil
}

// GetProfile assembles the full user record with roles and the flattened
// permission set across those roles.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.roles.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	permissions, err := s.roles.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:         user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Mobile:         user.Mobile,
		AadharNumber:   user.AadharNumber,
		ApprovalStatus: user.ApprovalStatus,
		Roles:          make([]RoleInfo, 0, len(roles)),
		AllPermissions: permissions,
	}
	if profile.AllPermissions == nil {
		profile.AllPermissions = []string{}
	}
	for _, r := range roles {
		profile.Roles = append(profile.Roles, RoleInfo{ID: r.ID, Name: r.Name})
	}

	return profile, nil
}

// SetApproval transitions a user's approval status. A rejection also
// revokes every outstanding refresh token for the account.
func (s *Service) SetApproval(ctx context.Context, email, status string) error {
	switch status {
	case models.ApprovalApproved, models.ApprovalRejected, models.ApprovalPending:
	default:
		return fmt.Errorf("%w: unknown approval status %q", ErrInvalidInput, status)
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	if err := s.users.SetApprovalStatus(ctx, user.ID, status); err != nil {
		return err
	}

	if status == models.ApprovalRejected {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return err
		}
	}
	return nil
}

// AssignRoleByName looks up a role by name and assigns it to the user.
func (s *Service) AssignRoleByName(ctx context.Context, userID, roleName string) error {
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.roles.AssignRole(ctx, userID, role.ID)
}

func (s *Service) mintRefreshToken(ctx context.Context, userID string) (string, error) {
	token, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return "", err
	}

	record := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.refreshTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", err
	}
	return token, nil
}
