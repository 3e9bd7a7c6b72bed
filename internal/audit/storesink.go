package audit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/clearway-dev/clearway/internal/models"
	internalsettings "github.com/clearway-dev/clearway/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoreSink persists audit events through a background writer so no
// database I/O ever sits on the admission path. Events are dropped with
// a warning when the queue is full.
type StoreSink struct {
	db *gorm.DB

	queue chan Event

	closeOnce sync.Once
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewStoreSink constructs a StoreSink and starts its writer.
func NewStoreSink(db *gorm.DB) *StoreSink {
	s := &StoreSink{
		db:    db,
		queue: make(chan Event, internalsettings.AuditStoreQueueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues the event for persistence.
func (s *StoreSink) Record(event Event) {
	if s == nil || s.db == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.queue <- event:
	default:
		log.WithField("kind", event.Kind).Warn("audit store: queue full, event dropped")
	}
	s.mu.Unlock()
}

// Close drains the queue and stops the writer.
func (s *StoreSink) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
		<-s.done
	})
}

func (s *StoreSink) run() {
	defer close(s.done)
	for event := range s.queue {
		s.write(event)
	}
}

func (s *StoreSink) write(event Event) {
	var details datatypes.JSON
	if len(event.Details) > 0 {
		payload, errMarshal := json.Marshal(event.Details)
		if errMarshal != nil {
			log.WithError(errMarshal).Warn("audit store: marshal details failed")
		} else {
			details = datatypes.JSON(payload)
		}
	}
	record := models.AuditEvent{
		Kind:         event.Kind,
		ActorID:      event.ActorID,
		OperationKey: event.OperationKey,
		Details:      details,
		CreatedAt:    event.At,
	}
	if errCreate := s.db.WithContext(context.Background()).Create(&record).Error; errCreate != nil {
		log.WithError(errCreate).Warn("audit store: insert failed")
	}
}
