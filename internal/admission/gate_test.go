package admission

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clearway-dev/clearway/internal/audit"
)

func newTestGate(nowFn func() time.Time, sink audit.Sink, privileged PrivilegeFn, overrides OverrideProvider) *Gate {
	return NewGate(GateOptions{
		Resolver:   NewConfigResolver(overrides, sink, nowFn),
		Limiter:    NewLimiter(nowFn),
		Cooldowns:  NewCooldownManager(nowFn),
		Privileged: privileged,
		Sink:       sink,
		WallFn:     nowFn,
	})
}

func TestGuardAllowsAndSetsCooldown(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	gate := newTestGate(func() time.Time { return now }, sink, nil, nil)

	decision, errGuard := gate.Guard(GuardRequest{
		ActorID:      "actor-1",
		OperationKey: "wallet.transfer",
		Scope:        ScopeUser,
		MaxUses:      3,
	})
	if errGuard != nil {
		t.Fatalf("expected guard ok, got %v", errGuard)
	}
	if !decision.Allowed || decision.Bypassed {
		t.Fatalf("expected plain admission, got %+v", decision)
	}
	if decision.Remaining != 2 {
		t.Fatalf("expected remaining=2, got %d", decision.Remaining)
	}

	// The cooldown was set before the guarded operation runs.
	status := gate.CheckCooldown("actor-1", "wallet.transfer")
	if !status.OnCooldown {
		t.Fatalf("expected cooldown active after admission")
	}
}

func TestGuardDeniesDuringCooldown(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	sink := &recordingSink{}
	gate := newTestGate(func() time.Time { return now }, sink, nil, nil)

	request := GuardRequest{
		ActorID:      "actor-1",
		OperationKey: "wallet.transfer",
		Scope:        ScopeUser,
		MaxUses:      3,
	}
	if _, errGuard := gate.Guard(request); errGuard != nil {
		t.Fatalf("expected first guard ok, got %v", errGuard)
	}

	now = start.Add(5 * time.Second)
	decision, errGuard := gate.Guard(request)
	if errGuard != nil {
		t.Fatalf("expected guard ok, got %v", errGuard)
	}
	if decision.Allowed {
		t.Fatalf("expected denial during cooldown")
	}
	if decision.RetryAfter != 25 {
		t.Fatalf("expected retryAfter=25, got %d", decision.RetryAfter)
	}
	if decision.Tier != TierUltraSensitive {
		t.Fatalf("expected ultra-sensitive tier, got %v", decision.Tier)
	}
	if !strings.Contains(decision.Message, "25 seconds") {
		t.Fatalf("expected tiered message with remaining time, got %q", decision.Message)
	}

	foundViolation := false
	for _, event := range sink.events {
		if event.Kind == audit.KindViolation && event.ActorID == "actor-1" {
			foundViolation = true
		}
	}
	if !foundViolation {
		t.Fatalf("expected violation event, got %v", sink.kinds())
	}
}

func TestGuardDeniesWhenWindowExhausted(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	gate := newTestGate(func() time.Time { return now }, sink, nil, nil)

	windowSeconds := 60
	request := GuardRequest{
		ActorID:      "actor-1",
		OperationKey: "order.cancel",
		Scope:        ScopeUser,
		MaxUses:      2,
		Override:     &ConfigOverride{Seconds: &windowSeconds},
	}
	// The resolved seconds drive both window and cooldown; reset the
	// cooldown between calls so only the sliding window decides.
	for i := 0; i < 2; i++ {
		decision, errGuard := gate.Guard(request)
		if errGuard != nil || !decision.Allowed {
			t.Fatalf("call %d: expected allowed, got %+v err=%v", i+1, decision, errGuard)
		}
		gate.ResetCooldown("actor-1", "order.cancel")
	}

	decision, errGuard := gate.Guard(request)
	if errGuard != nil {
		t.Fatalf("expected guard ok, got %v", errGuard)
	}
	if decision.Allowed {
		t.Fatalf("expected rate-limit denial")
	}
	if decision.RetryAfter != 60 {
		t.Fatalf("expected retryAfter=60, got %d", decision.RetryAfter)
	}
}

func TestGuardPrivilegedBypass(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink := &recordingSink{}
	privileged := func(actorID, _ string) bool { return actorID == "admin-1" }
	gate := newTestGate(func() time.Time { return now }, sink, privileged, nil)

	decision, errGuard := gate.Guard(GuardRequest{
		ActorID:      "admin-1",
		GuildID:      "guild-9",
		OperationKey: "wallet.transfer",
		Scope:        ScopeUser,
		MaxUses:      1,
	})
	if errGuard != nil {
		t.Fatalf("expected guard ok, got %v", errGuard)
	}
	if !decision.Allowed || !decision.Bypassed {
		t.Fatalf("expected bypass decision, got %+v", decision)
	}

	// No cooldown set, no window slot consumed.
	if status := gate.CheckCooldown("admin-1", "wallet.transfer"); status.OnCooldown {
		t.Fatalf("expected no cooldown after bypass")
	}
	if result := gate.TryAcquire("wallet.transfer", ScopeUser, "admin-1", "", "", 60, 1); !result.Allowed {
		t.Fatalf("expected untouched window after bypass")
	}

	if len(sink.events) != 1 || sink.events[0].Kind != audit.KindBypass {
		t.Fatalf("expected one bypass event, got %v", sink.kinds())
	}
	if sink.events[0].Details["context_id"] != "guild-9" {
		t.Fatalf("expected guild context in bypass event, got %v", sink.events[0].Details)
	}
}

func TestGuardAbuseAlertEmitted(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	sink := &recordingSink{}
	gate := newTestGate(func() time.Time { return now }, sink, nil, nil)

	request := GuardRequest{
		ActorID:      "actor-1",
		OperationKey: "wallet.withdraw",
		Scope:        ScopeUser,
		MaxUses:      1,
	}
	if _, errGuard := gate.Guard(request); errGuard != nil {
		t.Fatalf("expected first guard ok, got %v", errGuard)
	}

	// Hammer the cooldown five times within the alert window.
	alerts := 0
	for i := 1; i <= 5; i++ {
		now = start.Add(time.Duration(i) * time.Second)
		decision, errGuard := gate.Guard(request)
		if errGuard != nil || decision.Allowed {
			t.Fatalf("retry %d: expected denial, got %+v err=%v", i, decision, errGuard)
		}
	}
	for _, event := range sink.events {
		if event.Kind == audit.KindAbuseAlert {
			alerts++
		}
	}
	if alerts != 1 {
		t.Fatalf("expected exactly one abuse alert, got %d (%v)", alerts, sink.kinds())
	}
}

func TestGuardConfigurationErrorPropagates(t *testing.T) {
	gate := newTestGate(nil, &recordingSink{}, nil, nil)

	_, errGuard := gate.Guard(GuardRequest{
		ActorID:      "actor-1",
		OperationKey: "xyz",
		Scope:        ScopeUser,
	})
	var cfgErr *ConfigurationError
	if !errors.As(errGuard, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", errGuard)
	}
}
