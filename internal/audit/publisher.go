package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	internalsettings "github.com/clearway-dev/clearway/internal/settings"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const publisherBreakerDuration = 30 * time.Second

// PublisherConfig holds the Redis settings for event publication.
type PublisherConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// Publisher forwards audit events to a Redis channel for external
// notification consumers. When Redis is unreachable it trips a breaker
// and drops events until the breaker expires; delivery is best effort.
type Publisher struct {
	cfg          PublisherConfig
	nowFn        func() time.Time
	newClient    RedisClientFactory
	mu           sync.Mutex
	client       *redis.Client
	breakerUntil time.Time
}

// NewPublisher constructs a Publisher with default dependencies when nil.
func NewPublisher(cfg PublisherConfig, nowFn func() time.Time, newClient RedisClientFactory) *Publisher {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newClient == nil {
		newClient = redis.NewClient
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		cfg.Channel = internalsettings.DefaultAuditChannel
	}
	return &Publisher{
		cfg:       cfg,
		nowFn:     nowFn,
		newClient: newClient,
	}
}

// Record publishes the event as JSON.
func (p *Publisher) Record(event Event) {
	if p == nil {
		return
	}
	now := p.nowFn()
	if p.isBreakerActive(now) {
		return
	}
	client, errEnsure := p.ensureClient()
	if errEnsure != nil {
		p.tripBreaker(errEnsure, now)
		return
	}
	payload, errMarshal := json.Marshal(map[string]any{
		"kind":      event.Kind,
		"actor_id":  event.ActorID,
		"operation": event.OperationKey,
		"details":   event.Details,
		"at":        event.At,
	})
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("audit publisher: marshal event failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if errPublish := client.Publish(ctx, p.cfg.Channel, payload).Err(); errPublish != nil {
		p.tripBreaker(errPublish, now)
	}
}

// Close releases the Redis client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		_ = p.client.Close()
		p.client = nil
	}
}

func (p *Publisher) isBreakerActive(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.breakerUntil.IsZero() {
		return false
	}
	if now.Before(p.breakerUntil) {
		return true
	}
	p.breakerUntil = time.Time{}
	return false
}

func (p *Publisher) tripBreaker(err error, now time.Time) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.breakerUntil.IsZero() && now.Before(p.breakerUntil) {
		return
	}
	p.breakerUntil = now.Add(publisherBreakerDuration)
	log.WithError(err).Warn("audit publisher: redis unavailable, events dropped until breaker expires")
}

func (p *Publisher) ensureClient() (*redis.Client, error) {
	addr := strings.TrimSpace(p.cfg.Addr)
	if addr == "" {
		return nil, errors.New("audit publisher: missing address")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client := p.newClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.cfg.Password),
		DB:       p.cfg.DB,
	})
	ctxPing, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	p.client = client
	return p.client, nil
}
