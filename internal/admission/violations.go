package admission

import (
	"sync"
	"time"

	internalsettings "github.com/clearway-dev/clearway/internal/settings"
)

type violationKey struct {
	actorID      string
	operationKey string
}

type violationHistory struct {
	stamps    []time.Time // Violations inside the alert window, oldest first.
	lastAlert time.Time   // Zero when no alert has fired yet.
}

// violationTracker detects escalating abuse: repeated denials inside a
// rolling window raise an alert, throttled so a persistent abuser emits
// at most one alert per alert-cooldown interval.
type violationTracker struct {
	window        time.Duration
	threshold     int
	alertCooldown time.Duration

	mu      sync.Mutex
	history map[violationKey]*violationHistory
}

func newViolationTracker() *violationTracker {
	return &violationTracker{
		window:        internalsettings.ViolationAlertWindowSeconds * time.Second,
		threshold:     internalsettings.ViolationAlertThreshold,
		alertCooldown: internalsettings.ViolationAlertCooldownSeconds * time.Second,
		history:       make(map[violationKey]*violationHistory),
	}
}

func (t *violationTracker) record(actorID, operationKey string, now time.Time) ViolationOutcome {
	key := violationKey{actorID: actorID, operationKey: operationKey}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.history[key]
	if h == nil {
		h = &violationHistory{}
		t.history[key] = h
	}

	h.stamps = append(h.stamps, now)
	valid := 0
	for _, stamp := range h.stamps {
		if now.Sub(stamp) < t.window {
			h.stamps[valid] = stamp
			valid++
		}
	}
	h.stamps = h.stamps[:valid]

	outcome := ViolationOutcome{Count: len(h.stamps)}
	if outcome.Count >= t.threshold {
		if h.lastAlert.IsZero() || now.Sub(h.lastAlert) > t.alertCooldown {
			h.lastAlert = now
			outcome.Alert = true
		}
	}
	return outcome
}
