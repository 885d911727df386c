package auth

import (
	"time"
)

// RevokedToken is a refresh token that was blacklisted before its natural expiry.
// TokenID is the hex SHA-256 of the raw token string, so the token itself is never stored.
type RevokedToken struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TokenID   string    `json:"token_id" gorm:"size:64;uniqueIndex;not null"`
	UserID    int64     `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	RevokedAt time.Time `json:"revoked_at" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"size:100"` // logout, admin, ...
}
