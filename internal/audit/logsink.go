package audit

import (
	log "github.com/sirupsen/logrus"
)

// LogSink writes audit events as structured log lines.
type LogSink struct{}

// NewLogSink constructs a LogSink.
func NewLogSink() LogSink {
	return LogSink{}
}

// Record logs the event. Configuration fallbacks and abuse alerts are
// warnings so operators notice them; everything else is informational.
func (LogSink) Record(event Event) {
	entry := log.WithFields(log.Fields{
		"kind":      event.Kind,
		"actor_id":  event.ActorID,
		"operation": event.OperationKey,
	})
	for key, value := range event.Details {
		entry = entry.WithField(key, value)
	}
	switch event.Kind {
	case KindAbuseAlert:
		entry.Warn("admission: abuse alert")
	case KindConfigDefault:
		entry.Warn("admission: cooldown default in use, no override configured")
	case KindConfigFallback:
		entry.Warn("admission: override accepted for operation without built-in default")
	case KindBypass:
		entry.Info("admission: privileged bypass")
	default:
		entry.Info("admission: " + event.Kind)
	}
}
