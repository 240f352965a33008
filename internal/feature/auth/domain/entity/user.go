// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account in the system.
// It contains authentication credentials and the public profile fields.
type User struct {
	// ID is the unique identifier for the user, assigned at creation.
	ID uint `gorm:"primaryKey"`

	// Name is the user's display name (2-50 characters, trimmed).
	Name string `gorm:"size:50;not null"`

	// Email is the user's email address used for authentication.
	// It is stored lowercased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This never stores plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// AvatarURL is the relative path of the user's uploaded avatar.
	// Empty until the user uploads one.
	AvatarURL string `gorm:"size:255"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
