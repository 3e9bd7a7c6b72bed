package admission

import "fmt"

// Scope indicates which dimension a rate limit is counted against.
type Scope int

const (
	// ScopeUser counts usage per actor.
	ScopeUser Scope = iota
	// ScopeChannel counts usage per channel.
	ScopeChannel
	// ScopeGuild counts usage per guild.
	ScopeGuild
)

// String returns the wire name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeChannel:
		return "channel"
	case ScopeGuild:
		return "guild"
	default:
		return "user"
	}
}

// ParseScope converts a wire name into a Scope.
func ParseScope(raw string) (Scope, error) {
	switch raw {
	case "user", "":
		return ScopeUser, nil
	case "channel":
		return ScopeChannel, nil
	case "guild":
		return ScopeGuild, nil
	default:
		return ScopeUser, fmt.Errorf("unknown scope: %q", raw)
	}
}

// Result describes the outcome of a rate limit acquisition.
type Result struct {
	Allowed    bool
	RetryAfter int // Seconds until a slot frees, 0 when allowed.
	Remaining  int // Uses left in the window after this acquisition.
}

// CooldownStatus describes the outcome of a cooldown check.
type CooldownStatus struct {
	OnCooldown bool
	Remaining  int // Whole seconds until the cooldown expires.
}

// ViolationOutcome reports the state of an actor's violation history
// after recording one more violation.
type ViolationOutcome struct {
	Count int
	Alert bool
}

// RateLimitSettings bundles the parameters of one operation's sliding
// window.
type RateLimitSettings struct {
	Key      string
	Cooldown int // Window length in seconds.
	MaxUses  int
	Scope    Scope
}

// CooldownConfig is the resolved cooldown policy for one operation.
type CooldownConfig struct {
	Seconds       int
	Tier          Tier
	OperationType string
}

// ConfigOverride supplies call-site values that take precedence over
// external overrides and built-in defaults. Nil fields fall through.
type ConfigOverride struct {
	Seconds       *int
	Tier          *Tier
	OperationType *string
}

// OverrideMap maps operation keys to override cooldown seconds.
type OverrideMap map[string]int

// OverrideProvider supplies the latest external override snapshot.
type OverrideProvider func() OverrideMap
