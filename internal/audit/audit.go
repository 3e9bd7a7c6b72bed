package audit

import "time"

// Event kinds emitted by the admission layer.
const (
	// KindBypass records a privileged actor skipping admission checks.
	KindBypass = "bypass"
	// KindViolation records a denied admission attempt.
	KindViolation = "violation"
	// KindAbuseAlert records an actor crossing the violation threshold.
	KindAbuseAlert = "abuse_alert"
	// KindConfigDefault records a built-in cooldown default being used
	// with no override present.
	KindConfigDefault = "config_default"
	// KindConfigFallback records an override accepted for an operation
	// that has no built-in default.
	KindConfigFallback = "config_fallback"
)

// Event describes one auditable admission-layer occurrence.
type Event struct {
	Kind         string
	ActorID      string
	OperationKey string
	Details      map[string]any
	At           time.Time
}

// Sink receives audit events. Implementations absorb their own delivery
// errors; a failing sink must never affect the admission decision that
// produced the event.
type Sink interface {
	Record(event Event)
}

// Fanout delivers each event to every sink in order.
type Fanout []Sink

// Record forwards the event to all sinks.
func (f Fanout) Record(event Event) {
	for _, sink := range f {
		if sink != nil {
			sink.Record(event)
		}
	}
}

// Nop discards all events.
type Nop struct{}

// Record does nothing.
func (Nop) Record(Event) {}
