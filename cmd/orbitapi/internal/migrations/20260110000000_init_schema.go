package migrations

import (
	"context"
	"fmt"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260110000000, down_20260110000000)
}

// up_20260110000000 initializes the full database schema
func up_20260110000000(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		name  string
		model any
	}{
		{"users", (*models.User)(nil)},
		{"roles", (*models.Role)(nil)},
		{"permissions", (*models.Permission)(nil)},
		{"user_roles", (*models.UserRole)(nil)},
		{"role_permissions", (*models.RolePermission)(nil)},
		{"refresh_tokens", (*models.RefreshToken)(nil)},
	}

	for _, t := range tables {
		fmt.Printf(" [up] creating %s table...", t.name)
		_, err := db.NewCreateTable().
			Model(t.model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
		fmt.Println(" OK")
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_approval_status ON users(approval_status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id)`,
	}

	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// down_20260110000000 drops all schema tables
func down_20260110000000(ctx context.Context, db *bun.DB) error {
	tables := []string{
		"refresh_tokens",
		"role_permissions",
		"user_roles",
		"permissions",
		"roles",
		"users",
	}

	for _, name := range tables {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", name, err)
		}
	}

	return nil
}
