package users

import "time"

// VerificationToken backs both email verification and password resets. A
// user can hold one pending token per type, so a pending verify token must
// not block a reset token.
type VerificationToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_verification_tokens_user_type"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Token     string `gorm:"uniqueIndex"`
	Type      string `gorm:"uniqueIndex:idx_verification_tokens_user_type"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
