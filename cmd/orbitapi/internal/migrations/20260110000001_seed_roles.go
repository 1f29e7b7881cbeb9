package migrations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260110000001, down_20260110000001)
}

var seedRoles = map[string]struct {
	description string
	permissions []string
}{
	"resident": {
		description: "Default role for approved village residents",
		permissions: []string{
			"complaints:create",
			"complaints:view-own",
			"notices:view",
			"schemes:view",
		},
	},
	"admin": {
		description: "Village administrator with full portal access",
		permissions: []string{
			"users:approve",
			"complaints:manage",
			"notices:manage",
			"schemes:manage",
			"complaints:create",
			"complaints:view-own",
			"notices:view",
			"schemes:view",
		},
	},
}

// up_20260110000001 seeds the default roles and permissions
func up_20260110000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] seeding default roles and permissions...")

	// Collect the distinct permission codes across all roles
	permIDs := make(map[string]string)
	for _, role := range seedRoles {
		for _, code := range role.permissions {
			if _, ok := permIDs[code]; !ok {
				permIDs[code] = uuid.NewString()
			}
		}
	}

	for code, id := range permIDs {
		perm := &models.Permission{ID: id, Code: code}
		_, err := db.NewInsert().
			Model(perm).
			On("CONFLICT (code) DO NOTHING"). // Idempotent
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", code, err)
		}
	}

	for name, def := range seedRoles {
		role := &models.Role{
			ID:          uuid.NewString(),
			Name:        name,
			Description: def.description,
		}
		_, err := db.NewInsert().
			Model(role).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}

		// Re-read so joins use the stored ID even when the role already existed
		if err := db.NewSelect().Model(role).Where("name = ?", name).Scan(ctx); err != nil {
			return fmt.Errorf("failed to load seeded role %s: %w", name, err)
		}

		for _, code := range def.permissions {
			perm := new(models.Permission)
			if err := db.NewSelect().Model(perm).Where("code = ?", code).Scan(ctx); err != nil {
				return fmt.Errorf("failed to load seeded permission %s: %w", code, err)
			}

			join := &models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			_, err := db.NewInsert().
				Model(join).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to link role %s to permission %s: %w", name, code, err)
			}
		}
	}

	fmt.Println(" OK")
	return nil
}

// down_20260110000001 removes the seeded roles and permissions
func down_20260110000001(ctx context.Context, db *bun.DB) error {
	for name := range seedRoles {
		role := new(models.Role)
		err := db.NewSelect().Model(role).Where("name = ?", name).Scan(ctx)
		if err != nil {
			continue
		}

		if _, err := db.NewDelete().Model((*models.RolePermission)(nil)).Where("role_id = ?", role.ID).Exec(ctx); err != nil {
			return fmt.Errorf("failed to unlink role %s: %w", name, err)
		}
		if _, err := db.NewDelete().Model(role).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete role %s: %w", name, err)
		}
	}

	return nil
}
