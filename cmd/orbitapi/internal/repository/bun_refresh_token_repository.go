package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunRefreshTokenRepository implements RefreshTokenRepository using Bun ORM
type BunRefreshTokenRepository struct {
	db *bun.DB
}

// NewBunRefreshTokenRepository creates a new Bun-based refresh token repository
func NewBunRefreshTokenRepository(db *bun.DB) *BunRefreshTokenRepository {
	return &BunRefreshTokenRepository{db: db}
}

// Create inserts a new refresh token record
func (r *BunRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	_, err := r.db.NewInsert().
		Model(token).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// GetByHash retrieves a refresh token by its SHA-256 hash
func (r *BunRefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	token := new(models.RefreshToken)
	err := r.db.NewSelect().
		Model(token).
		Where("rt.token_hash = ?", hash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

// Revoke marks a single refresh token as revoked
func (r *BunRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked_at = ?", time.Now()).
		Where("id = ? AND revoked_at IS NULL", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active refresh token held by a user
func (r *BunRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked_at = ?", time.Now()).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("revoke refresh tokens for user: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens past their expiry, returning the number deleted
func (r *BunRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
