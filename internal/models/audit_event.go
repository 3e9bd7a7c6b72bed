package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent persists one admission audit event.
type AuditEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Kind         string         `gorm:"size:32;not null;index"`  // Event kind.
	ActorID      string         `gorm:"size:64;not null;index"`  // Actor the event concerns.
	OperationKey string         `gorm:"size:128;not null;index"` // Guarded operation key.
	Details      datatypes.JSON // Kind-specific payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Wall-clock timestamp.
}
