package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/database/models/auth"
)

// Ledger records revoked refresh tokens. Record returns an AlreadyRevoked error
// when the token id is already present.
type Ledger interface {
	Record(ctx context.Context, token *auth.RevokedToken) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RevocationLedger is the durable ledger. The unique index on token_id makes
// concurrent revocations of the same token collapse into one row.
type RevocationLedger struct {
	db *gorm.DB
}

func NewRevocationLedger(db *gorm.DB) *RevocationLedger {
	return &RevocationLedger{db: db}
}

func (l *RevocationLedger) Record(ctx context.Context, token *auth.RevokedToken) error {
	if token.RevokedAt.IsZero() {
		token.RevokedAt = time.Now().UTC()
	}

	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token_id"}}, DoNothing: true}).
		Create(token)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "record revoked token", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.AlreadyRevoked, "Token already revoked")
	}
	return nil
}

func (l *RevocationLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&auth.RevokedToken{}).Where("token_id = ?", tokenID).Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "check revoked token", err)
	}
	return count > 0, nil
}

// PurgeExpired removes rows for tokens that verification rejects as expired on its own.
// A token is still accepted until exp + leeway, so only rows with expires_at < now - leeway go.
func (l *RevocationLedger) PurgeExpired(ctx context.Context, now time.Time, leeway time.Duration) (int64, error) {
	cutoff := now.Add(-leeway)
	result := l.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&auth.RevokedToken{})
	if result.Error != nil {
		return 0, apperr.Wrap(apperr.Internal, "purge revoked tokens", result.Error)
	}
	return result.RowsAffected, nil
}
