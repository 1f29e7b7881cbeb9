package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunRoleRepository implements RoleRepository using Bun ORM
type BunRoleRepository struct {
	db *bun.DB
}

// NewBunRoleRepository creates a new Bun-based role repository
func NewBunRoleRepository(db *bun.DB) *BunRoleRepository {
	return &BunRoleRepository{db: db}
}

// GetByName retrieves a role by its unique name
func (r *BunRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().
		Model(role).
		Where("r.name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

// RolesForUser returns all roles assigned to a user
func (r *BunRoleRepository) RolesForUser(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.NewSelect().
		Model(&roles).
		Join("JOIN user_roles AS ur ON ur.role_id = r.id").
		Where("ur.user_id = ?", userID).
		Order("r.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	return roles, nil
}

// PermissionsForUser returns the flattened, de-duplicated permission codes
// across all roles assigned to a user.
func (r *BunRoleRepository) PermissionsForUser(ctx context.Context, userID string) ([]string, error) {
	var codes []string
	err := r.db.NewSelect().
		ColumnExpr("DISTINCT p.code").
		TableExpr("permissions AS p").
		Join("JOIN role_permissions AS rp ON rp.permission_id = p.id").
		Join("JOIN user_roles AS ur ON ur.role_id = rp.role_id").
		Where("ur.user_id = ?", userID).
		OrderExpr("p.code ASC").
		Scan(ctx, &codes)
	if err != nil {
		return nil, fmt.Errorf("permissions for user: %w", err)
	}
	return codes, nil
}

// AssignRole links a user to a role. Assigning an already held role is a no-op.
func (r *BunRoleRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	join := &models.UserRole{UserID: userID, RoleID: roleID}
	_, err := r.db.NewInsert().
		Model(join).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}
