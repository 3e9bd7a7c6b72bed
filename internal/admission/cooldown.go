package admission

import (
	"sync"
	"time"
)

type cooldownKey struct {
	actorID      string
	operationKey string
}

// CooldownManager enforces single-use-until-expiry cooldowns per
// (actor, operation), independent of the rate limiter's quota. A
// cooldown must be set before the guarded operation executes and is
// never cleared when the operation fails: a possibly-still-processing
// financial side effect must not be retried inside the window.
type CooldownManager struct {
	nowFn func() time.Time

	mu      sync.Mutex
	entries map[cooldownKey]time.Time // Absolute expiry instants.
}

// NewCooldownManager constructs a CooldownManager. A nil nowFn defaults
// to time.Now.
func NewCooldownManager(nowFn func() time.Time) *CooldownManager {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &CooldownManager{
		nowFn:   nowFn,
		entries: make(map[cooldownKey]time.Time),
	}
}

// Check reports whether the actor is on cooldown for the operation. An
// entry observed past its expiry is removed, not just ignored.
func (m *CooldownManager) Check(actorID, operationKey string) CooldownStatus {
	key := cooldownKey{actorID: actorID, operationKey: operationKey}
	now := m.nowFn()

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.entries[key]
	if !ok {
		return CooldownStatus{}
	}
	if !now.Before(expiry) {
		delete(m.entries, key)
		return CooldownStatus{}
	}
	return CooldownStatus{
		OnCooldown: true,
		Remaining:  int(expiry.Sub(now).Seconds()),
	}
}

// Set stores a cooldown expiring in the given number of seconds,
// overwriting any existing entry.
func (m *CooldownManager) Set(actorID, operationKey string, seconds int) {
	key := cooldownKey{actorID: actorID, operationKey: operationKey}
	expiry := m.nowFn().Add(time.Duration(seconds) * time.Second)

	m.mu.Lock()
	m.entries[key] = expiry
	m.mu.Unlock()
}

// Reset removes the cooldown for the key and reports whether an entry
// existed.
func (m *CooldownManager) Reset(actorID, operationKey string) bool {
	key := cooldownKey{actorID: actorID, operationKey: operationKey}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

// CleanupExpired removes every expired entry and returns how many were
// removed.
func (m *CooldownManager) CleanupExpired() int {
	now := m.nowFn()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, expiry := range m.entries {
		if !now.Before(expiry) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}
