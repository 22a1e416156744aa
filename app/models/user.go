package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:191;not null"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:32;not null;default:user"`

	// Both set while a reset is pending, both nil otherwise.
	PasswordResetToken   *string    `gorm:"index;size:64"`
	PasswordResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResetPending reports whether the user has an unconsumed reset token
// at the given instant.
func (u *User) ResetPending(now time.Time) bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil && now.Before(*u.PasswordResetExpires)
}

// Gravatar returns the avatar URL derived from the user's email.
func (u *User) Gravatar() string {
	if u.Email == "" {
		return "https://gravatar.com/avatar/?s=200&d=retro"
	}
	sum := md5.Sum([]byte(u.Email))
	return "https://gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&d=retro"
}
