package admission

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clearway-dev/clearway/internal/audit"
)

// defaultCooldowns is the built-in cooldown table for known operations.
var defaultCooldowns = map[string]CooldownConfig{
	"wallet.transfer": {Seconds: 30, Tier: TierUltraSensitive, OperationType: "financial"},
	"wallet.withdraw": {Seconds: 60, Tier: TierUltraSensitive, OperationType: "financial"},
	"wallet.deposit":  {Seconds: 15, Tier: TierSensitive, OperationType: "financial"},
	"order.create":    {Seconds: 10, Tier: TierSensitive, OperationType: "order"},
	"order.cancel":    {Seconds: 5, Tier: TierStandard, OperationType: "order"},
	"ticket.create":   {Seconds: 120, Tier: TierStandard, OperationType: "support"},
}

// fallbackOperationType labels operations that carry an override but no
// built-in default.
const fallbackOperationType = "custom"

// DefaultKeys returns the sorted operation keys of the built-in table.
func DefaultKeys() []string {
	keys := make([]string, 0, len(defaultCooldowns))
	for key := range defaultCooldowns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ConfigurationError reports an operation key with neither a built-in
// default nor an external override. This is an operator-facing bug, not
// an admission denial.
type ConfigurationError struct {
	OperationKey string
	KnownKeys    []string
}

// Error names the unresolvable key and lists the known defaults.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no cooldown configuration for operation %q (known operations: %s)",
		e.OperationKey, strings.Join(e.KnownKeys, ", "))
}

// ConfigResolver produces the authoritative CooldownConfig for an
// operation by merging, in strict precedence order: call-site override,
// external per-operation override, built-in default.
type ConfigResolver struct {
	overrides OverrideProvider
	sink      audit.Sink
	wallFn    func() time.Time
}

// NewConfigResolver constructs a ConfigResolver with default
// dependencies when nil.
func NewConfigResolver(overrides OverrideProvider, sink audit.Sink, wallFn func() time.Time) *ConfigResolver {
	if overrides == nil {
		overrides = func() OverrideMap { return nil }
	}
	if sink == nil {
		sink = audit.Nop{}
	}
	if wallFn == nil {
		wallFn = func() time.Time { return time.Now().UTC() }
	}
	return &ConfigResolver{overrides: overrides, sink: sink, wallFn: wallFn}
}

// Resolve returns the effective cooldown configuration for the
// operation. An override without a built-in default is accepted with
// Standard tier and a "custom" operation type, reported as a warning; a
// key with neither source fails with a ConfigurationError.
func (r *ConfigResolver) Resolve(operationKey string, callsite *ConfigOverride) (CooldownConfig, error) {
	def, hasDefault := defaultCooldowns[operationKey]
	overrideSeconds, hasOverride := r.overrides()[operationKey]

	var cfg CooldownConfig
	switch {
	case hasOverride && hasDefault:
		cfg = def
		cfg.Seconds = overrideSeconds
	case hasOverride:
		cfg = CooldownConfig{
			Seconds:       overrideSeconds,
			Tier:          TierStandard,
			OperationType: fallbackOperationType,
		}
		r.sink.Record(audit.Event{
			Kind:         audit.KindConfigFallback,
			OperationKey: operationKey,
			Details:      map[string]any{"seconds": overrideSeconds},
			At:           r.wallFn(),
		})
	case hasDefault:
		cfg = def
		r.sink.Record(audit.Event{
			Kind:         audit.KindConfigDefault,
			OperationKey: operationKey,
			Details:      map[string]any{"seconds": def.Seconds},
			At:           r.wallFn(),
		})
	default:
		return CooldownConfig{}, &ConfigurationError{
			OperationKey: operationKey,
			KnownKeys:    DefaultKeys(),
		}
	}

	if callsite != nil {
		if callsite.Seconds != nil {
			cfg.Seconds = *callsite.Seconds
		}
		if callsite.Tier != nil {
			cfg.Tier = *callsite.Tier
		}
		if callsite.OperationType != nil {
			cfg.OperationType = *callsite.OperationType
		}
	}
	return cfg, nil
}
