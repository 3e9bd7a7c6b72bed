package models

import "time"

// CooldownOverride replaces the built-in cooldown seconds for one
// operation key.
type CooldownOverride struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OperationKey string `gorm:"size:128;uniqueIndex;not null"` // Guarded operation key.
	Seconds      int    `gorm:"not null"`                      // Override cooldown in seconds.
	Note         string `gorm:"size:255"`                      // Operator note.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
