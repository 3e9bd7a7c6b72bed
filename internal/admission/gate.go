package admission

import (
	"time"

	"github.com/clearway-dev/clearway/internal/audit"
	internalsettings "github.com/clearway-dev/clearway/internal/settings"
)

// PrivilegeFn reports whether the actor may bypass admission checks in
// the given context. The gate never inspects actor or role data itself.
type PrivilegeFn func(actorID, contextID string) bool

// GateOptions wires the gate's collaborators. Nil fields get defaults.
type GateOptions struct {
	Resolver   *ConfigResolver
	Limiter    *Limiter
	Cooldowns  *CooldownManager
	Privileged PrivilegeFn
	Sink       audit.Sink
	WallFn     func() time.Time // Wall clock for audit timestamps.
}

// Gate is the admission entry point business handlers call before
// executing a sensitive operation: resolve config, check privilege
// bypass, check cooldown and rate limit, and set the cooldown before
// the guarded operation runs.
type Gate struct {
	resolver   *ConfigResolver
	limiter    *Limiter
	cooldowns  *CooldownManager
	privileged PrivilegeFn
	sink       audit.Sink
	wallFn     func() time.Time
}

// NewGate constructs a Gate with default dependencies when nil.
func NewGate(opts GateOptions) *Gate {
	if opts.Sink == nil {
		opts.Sink = audit.Nop{}
	}
	if opts.WallFn == nil {
		opts.WallFn = func() time.Time { return time.Now().UTC() }
	}
	if opts.Resolver == nil {
		opts.Resolver = NewConfigResolver(nil, opts.Sink, opts.WallFn)
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter(nil)
	}
	if opts.Cooldowns == nil {
		opts.Cooldowns = NewCooldownManager(nil)
	}
	return &Gate{
		resolver:   opts.Resolver,
		limiter:    opts.Limiter,
		cooldowns:  opts.Cooldowns,
		privileged: opts.Privileged,
		sink:       opts.Sink,
		wallFn:     opts.WallFn,
	}
}

// GuardRequest identifies one attempted operation invocation.
type GuardRequest struct {
	ActorID      string
	ChannelID    string
	GuildID      string
	OperationKey string
	Scope        Scope
	MaxUses      int // Uses per window; defaults to 1.
	Override     *ConfigOverride
}

// Decision is the tagged admission outcome. Denial is a value, never an
// error; only an unresolvable configuration returns an error.
type Decision struct {
	Allowed    bool
	Bypassed   bool
	RetryAfter int // Seconds until the actor may retry, 0 when allowed.
	Remaining  int // Uses left in the window, 0 when denied.
	Tier       Tier
	Message    string // User-facing denial message, empty when allowed.
}

// Guard runs the full admission sequence. On an allowed decision the
// cooldown is already set when Guard returns, so the caller executes
// the operation afterwards; a failing operation must not reset it.
func (g *Gate) Guard(req GuardRequest) (Decision, error) {
	cfg, errResolve := g.resolver.Resolve(req.OperationKey, req.Override)
	if errResolve != nil {
		return Decision{}, errResolve
	}

	contextID := req.GuildID
	if contextID == "" {
		contextID = req.ChannelID
	}
	if g.privileged != nil && g.privileged(req.ActorID, contextID) {
		g.sink.Record(audit.Event{
			Kind:         audit.KindBypass,
			ActorID:      req.ActorID,
			OperationKey: req.OperationKey,
			Details:      map[string]any{"context_id": contextID},
			At:           g.wallFn(),
		})
		return Decision{Allowed: true, Bypassed: true, Tier: cfg.Tier}, nil
	}

	if status := g.cooldowns.Check(req.ActorID, req.OperationKey); status.OnCooldown {
		return g.deny(req, cfg, "cooldown", status.Remaining), nil
	}

	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = internalsettings.DefaultMaxUses
	}
	identifier := ResolveIdentifier(req.Scope, req.ActorID, req.ChannelID, req.GuildID)
	result := g.limiter.TryAcquire(req.OperationKey, req.Scope, identifier, cfg.Seconds, maxUses)
	if !result.Allowed {
		return g.deny(req, cfg, "rate_limit", result.RetryAfter), nil
	}

	// Set-before-execute: the cooldown is stored before the caller runs
	// the operation, closing the double-submission race.
	g.cooldowns.Set(req.ActorID, req.OperationKey, cfg.Seconds)

	return Decision{Allowed: true, Remaining: result.Remaining, Tier: cfg.Tier}, nil
}

// deny records the violation, emits audit events after all internal
// state mutation is complete, and builds the denial decision.
func (g *Gate) deny(req GuardRequest, cfg CooldownConfig, reason string, retryAfter int) Decision {
	outcome := g.limiter.RecordViolation(req.ActorID, req.OperationKey)

	g.sink.Record(audit.Event{
		Kind:         audit.KindViolation,
		ActorID:      req.ActorID,
		OperationKey: req.OperationKey,
		Details: map[string]any{
			"reason":      reason,
			"retry_after": retryAfter,
			"count":       outcome.Count,
		},
		At: g.wallFn(),
	})
	if outcome.Alert {
		g.sink.Record(audit.Event{
			Kind:         audit.KindAbuseAlert,
			ActorID:      req.ActorID,
			OperationKey: req.OperationKey,
			Details:      map[string]any{"count": outcome.Count},
			At:           g.wallFn(),
		})
	}

	return Decision{
		Allowed:    false,
		RetryAfter: retryAfter,
		Tier:       cfg.Tier,
		Message:    DenialMessage(cfg.Tier, retryAfter),
	}
}

// ResolveConfig exposes configuration resolution to callers.
func (g *Gate) ResolveConfig(operationKey string, callsite *ConfigOverride) (CooldownConfig, error) {
	return g.resolver.Resolve(operationKey, callsite)
}

// TryAcquire runs only the rate-limit half of admission.
func (g *Gate) TryAcquire(operationKey string, scope Scope, actorID, channelID, guildID string, cooldownSeconds, maxUses int) Result {
	identifier := ResolveIdentifier(scope, actorID, channelID, guildID)
	return g.limiter.TryAcquire(operationKey, scope, identifier, cooldownSeconds, maxUses)
}

// RecordViolation exposes violation tracking to callers.
func (g *Gate) RecordViolation(actorID, operationKey string) ViolationOutcome {
	return g.limiter.RecordViolation(actorID, operationKey)
}

// CheckCooldown exposes the cooldown check to callers.
func (g *Gate) CheckCooldown(actorID, operationKey string) CooldownStatus {
	return g.cooldowns.Check(actorID, operationKey)
}

// SetCooldown exposes cooldown storage to callers.
func (g *Gate) SetCooldown(actorID, operationKey string, seconds int) {
	g.cooldowns.Set(actorID, operationKey, seconds)
}

// ResetCooldown removes a cooldown and reports whether one existed.
func (g *Gate) ResetCooldown(actorID, operationKey string) bool {
	return g.cooldowns.Reset(actorID, operationKey)
}

// CleanupExpired removes expired cooldown entries.
func (g *Gate) CleanupExpired() int {
	return g.cooldowns.CleanupExpired()
}
