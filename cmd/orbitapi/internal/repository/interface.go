package repository

import (
	"context"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
)

// UserRepository exposes persistence operations for resident accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetApprovalStatus(ctx context.Context, id, status string) error
	RecordLogin(ctx context.Context, id string) error
}

// RoleRepository exposes role and permission lookups.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	RolesForUser(ctx context.Context, userID string) ([]models.Role, error)
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RefreshTokenRepository exposes persistence operations for refresh tokens.
// Tokens are stored hashed; lookups are always by hash.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
