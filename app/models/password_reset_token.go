package models

import "time"

// PasswordResetToken is the single pending reset for a user.
type PasswordResetToken struct {
	ID         uint      `gorm:"primaryKey"`
	Token      string    `gorm:"size:64;uniqueIndex;not null"`
	UserID     uint      `gorm:"not null;uniqueIndex"`
	User       User      `gorm:"constraint:OnDelete:CASCADE"`
	ExpiryDate time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiryDate)
}
