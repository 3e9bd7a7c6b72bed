package admission

import (
	"sync"
	"time"
)

// Limiter routes acquisitions to per-key sliding-window buckets and
// tracks per-(actor, operation) violation escalation.
type Limiter struct {
	nowFn func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	violations *violationTracker
}

// NewLimiter constructs a Limiter. A nil nowFn defaults to time.Now.
func NewLimiter(nowFn func() time.Time) *Limiter {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Limiter{
		nowFn:      nowFn,
		buckets:    make(map[string]*bucket),
		violations: newViolationTracker(),
	}
}

// TryAcquire consumes one slot of the sliding window for the scoped
// identity. A bucket whose stored parameters no longer match the
// supplied ones is replaced, discarding its prior usage history.
func (l *Limiter) TryAcquire(operationKey string, scope Scope, identifier string, cooldownSeconds, maxUses int) Result {
	if cooldownSeconds <= 0 || maxUses <= 0 || operationKey == "" {
		return Result{Allowed: true, Remaining: maxUses}
	}
	key := BucketKey(operationKey, scope, identifier)

	l.mu.Lock()
	b := l.buckets[key]
	if b == nil || !b.matches(cooldownSeconds, maxUses) {
		b = newBucket(cooldownSeconds, maxUses)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	return b.acquire(l.nowFn())
}

// RecordViolation appends one violation to the actor's rolling history
// and reports whether an abuse alert should be raised. At most one
// alert fires per alert-cooldown interval for a given key.
func (l *Limiter) RecordViolation(actorID, operationKey string) ViolationOutcome {
	return l.violations.record(actorID, operationKey, l.nowFn())
}
