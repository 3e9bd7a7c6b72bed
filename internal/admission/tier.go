package admission

import "fmt"

// Tier classifies how sensitive an operation is. It only selects the
// denial message shown to the actor; it carries no weight in the
// admission decision itself.
type Tier int

const (
	// TierStandard is the default sensitivity.
	TierStandard Tier = iota
	// TierSensitive marks operations with financial side effects.
	TierSensitive
	// TierUltraSensitive marks operations that move funds or credentials.
	TierUltraSensitive
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierSensitive:
		return "sensitive"
	case TierUltraSensitive:
		return "ultra_sensitive"
	default:
		return "standard"
	}
}

// ParseTier converts a wire name into a Tier.
func ParseTier(raw string) (Tier, error) {
	switch raw {
	case "standard", "":
		return TierStandard, nil
	case "sensitive":
		return TierSensitive, nil
	case "ultra_sensitive":
		return TierUltraSensitive, nil
	default:
		return TierStandard, fmt.Errorf("unknown tier: %q", raw)
	}
}

// DenialMessage returns the user-facing message for a denied operation.
func DenialMessage(tier Tier, remainingSeconds int) string {
	if remainingSeconds < 1 {
		remainingSeconds = 1
	}
	switch tier {
	case TierUltraSensitive:
		return fmt.Sprintf("This operation is security-sensitive and can only be performed once per cooldown period. Try again in %d seconds.", remainingSeconds)
	case TierSensitive:
		return fmt.Sprintf("Please wait %d seconds before repeating this operation.", remainingSeconds)
	default:
		return fmt.Sprintf("You're doing that too fast. Try again in %d seconds.", remainingSeconds)
	}
}
