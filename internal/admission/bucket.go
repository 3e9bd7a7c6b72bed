package admission

import (
	"math"
	"sync"
	"time"
)

// bucket holds the sliding-window log for one (operation, scope,
// identifier) key. Each bucket owns its own lock, so acquisitions
// against different keys never contend.
type bucket struct {
	mu       sync.Mutex
	cooldown time.Duration
	maxUses  int
	stamps   []time.Time // Successful consumptions, oldest first.
}

func newBucket(cooldownSeconds, maxUses int) *bucket {
	return &bucket{
		cooldown: time.Duration(cooldownSeconds) * time.Second,
		maxUses:  maxUses,
		stamps:   make([]time.Time, 0, maxUses),
	}
}

// acquire consumes one slot if the window has capacity. Exactly one
// caller at a time observes and mutates the log.
func (b *bucket) acquire(now time.Time) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Prune entries that have slid out of the window.
	valid := 0
	for _, stamp := range b.stamps {
		if now.Sub(stamp) < b.cooldown {
			b.stamps[valid] = stamp
			valid++
		}
	}
	b.stamps = b.stamps[:valid]

	if len(b.stamps) >= b.maxUses {
		retryAfter := int(math.Ceil((b.cooldown - now.Sub(b.stamps[0])).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Result{Allowed: false, RetryAfter: retryAfter, Remaining: 0}
	}

	b.stamps = append(b.stamps, now)
	return Result{Allowed: true, RetryAfter: 0, Remaining: b.maxUses - len(b.stamps)}
}

// matches reports whether the bucket was built with the given
// parameters. A mismatch means the configuration changed and the bucket
// must be replaced, discarding its usage history.
func (b *bucket) matches(cooldownSeconds, maxUses int) bool {
	return b.cooldown == time.Duration(cooldownSeconds)*time.Second && b.maxUses == maxUses
}
