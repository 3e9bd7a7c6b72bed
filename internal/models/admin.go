package models

import "time"

// Admin is an administrative account for the admin API.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string `gorm:"size:64;uniqueIndex;not null"` // Login name.
	PasswordHash string `gorm:"size:255;not null"`            // Bcrypt password hash.

	Active bool `gorm:"not null;default:true"` // Whether login is allowed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
