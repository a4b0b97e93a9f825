package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
	"github.com/stayease/stayease-api/internal/pkg/logger"
)

// TokenRepository handles refresh token database operations
type TokenRepository struct {
	db *db.PostgresDB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(database *db.PostgresDB) *TokenRepository {
	return &TokenRepository{db: database}
}

// Create stores a new refresh token
func (r *TokenRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	sql, args, err := psql.Insert("refresh_tokens").
		Columns("token", "user_id", "expires_at", "revoked").
		Values(t.Token, t.UserID, t.ExpiresAt, false).
		ToSql()
	if err != nil {
		return buildErr("create token", err)
	}

	if _, err = r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_pkey") {
			logger.Warn().Int64("userID", t.UserID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// Get retrieves a token record. Revocation and expiry are left to the caller.
func (r *TokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := psql.Select("token", "user_id", "expires_at", "revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, buildErr("get token", err)
	}

	t := &models.RefreshToken{}
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving token: %w", err)
	}
	return t, nil
}

// Revoke marks a token revoked. It reports ErrTokenRevoked when it already was,
// which lets rotation detect a concurrent reuse.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"token": token, "revoked": false}).
		ToSql()
	if err != nil {
		return buildErr("revoke token", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// RevokeAllForUser revokes all active tokens of a user
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	sql, args, err := psql.Update("refresh_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"user_id": userID, "revoked": false}).
		ToSql()
	if err != nil {
		return buildErr("revoke user tokens", err)
	}

	if _, err = r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}

// CleanupExpired removes expired tokens and revoked tokens older than 30 days
func (r *TokenRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := psql.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.And{
				squirrel.Eq{"revoked": true},
				squirrel.Lt{"created_at": now.Add(-30 * 24 * time.Hour)},
			},
		}).
		ToSql()
	if err != nil {
		return 0, buildErr("cleanup tokens", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}
	logger.Info().Int64("deletedCount", tag.RowsAffected()).Msg("Cleaned up expired/old revoked tokens")
	return tag.RowsAffected(), nil
}
