// Package users holds the admin subcommands for managing resident accounts
// directly against the database, without going through the HTTP API.
package users

import (
	"fmt"
	"time"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/config"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/bunx"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/repository"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

var cfg *config.Config

// SetConfig injects the loaded configuration from the root command.
func SetConfig(c *config.Config) {
	cfg = c
}

// UsersCmd is the parent command for user management.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage resident accounts",
}

// openService connects to the database and builds an IAM service for
// one-shot admin operations. The caller must close the returned db.
func openService() (*iam.Service, *bun.DB, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}

	db, err := bunx.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, time.Minute)
	if err != nil {
		bunx.Close(db)
		return nil, nil, err
	}

	service := iam.NewService(iam.Dependencies{
		Users:  repository.NewBunUserRepository(db),
		Roles:  repository.NewBunRoleRepository(db),
		Tokens: repository.NewBunRefreshTokenRepository(db),
		Issuer: issuer,
	}, iam.Config{
		RefreshTTL:   cfg.RefreshTokenTTL,
		RotateWindow: cfg.RefreshRotateWindow,
	})
	return service, db, nil
}
