package settings

// Admission defaults shared across packages.
const (
	// ViolationAlertWindowSeconds is the rolling window for counting
	// rate-limit violations per (actor, operation).
	ViolationAlertWindowSeconds = 300
	// ViolationAlertThreshold is the violation count that triggers an
	// abuse alert.
	ViolationAlertThreshold = 5
	// ViolationAlertCooldownSeconds throttles repeated abuse alerts for
	// the same (actor, operation).
	ViolationAlertCooldownSeconds = 600
	// DefaultMaxUses is the uses-per-window applied when a caller does
	// not supply one.
	DefaultMaxUses = 1
	// DefaultPort is the HTTP listen port.
	DefaultPort = 8442
	// DefaultAuditChannel is the Redis channel audit events are
	// published to when the publisher is enabled.
	DefaultAuditChannel = "clearway:audit"
	// AuditStoreQueueSize bounds the async audit store queue; events
	// beyond it are dropped rather than blocking the admission path.
	AuditStoreQueueSize = 256
)
