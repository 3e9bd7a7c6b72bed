package admissionapi

import (
	"errors"
	"net/http"

	"github.com/clearway-dev/clearway/internal/admission"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler serves the admission API consumed by business handlers.
type Handler struct {
	gate *admission.Gate
}

// NewHandler constructs an admission API handler.
func NewHandler(gate *admission.Gate) *Handler {
	return &Handler{gate: gate}
}

// RegisterRoutes registers the public admission routes.
func RegisterRoutes(r *gin.Engine, gate *admission.Gate) {
	if r == nil || gate == nil {
		return
	}
	handler := NewHandler(gate)
	group := r.Group("/v1/admission")
	group.POST("/guard", handler.Guard)
	group.POST("/acquire", handler.Acquire)
	group.POST("/cooldowns/check", handler.CheckCooldown)
	group.POST("/cooldowns/start", handler.StartCooldown)
}

// overridePayload mirrors admission.ConfigOverride on the wire.
type overridePayload struct {
	Seconds       *int    `json:"seconds"`
	Tier          *string `json:"tier"`
	OperationType *string `json:"operation_type"`
}

func (p *overridePayload) toOverride() (*admission.ConfigOverride, error) {
	if p == nil {
		return nil, nil
	}
	override := &admission.ConfigOverride{
		Seconds:       p.Seconds,
		OperationType: p.OperationType,
	}
	if p.Tier != nil {
		tier, errParse := admission.ParseTier(*p.Tier)
		if errParse != nil {
			return nil, errParse
		}
		override.Tier = &tier
	}
	return override, nil
}

// guardRequest captures the payload for a full gate pass.
type guardRequest struct {
	ActorID   string           `json:"actor_id"`
	ChannelID string           `json:"channel_id"`
	GuildID   string           `json:"guild_id"`
	Operation string           `json:"operation"`
	Scope     string           `json:"scope"`
	MaxUses   int              `json:"max_uses"`
	Override  *overridePayload `json:"override"`
}

// Guard runs the full admission sequence and returns the decision.
// Denial is an ordinary 200 response; only an unresolvable operation
// configuration is an error.
func (h *Handler) Guard(c *gin.Context) {
	var body guardRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ActorID == "" || body.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id and operation are required"})
		return
	}
	scope, errScope := admission.ParseScope(body.Scope)
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}
	override, errOverride := body.Override.toOverride()
	if errOverride != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errOverride.Error()})
		return
	}

	decision, errGuard := h.gate.Guard(admission.GuardRequest{
		ActorID:      body.ActorID,
		ChannelID:    body.ChannelID,
		GuildID:      body.GuildID,
		OperationKey: body.Operation,
		Scope:        scope,
		MaxUses:      body.MaxUses,
		Override:     override,
	})
	if errGuard != nil {
		var cfgErr *admission.ConfigurationError
		if errors.As(errGuard, &cfgErr) {
			log.WithError(errGuard).WithField("operation", body.Operation).Error("admission: unresolvable operation configuration")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no cooldown configuration for operation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "admission check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":     decision.Allowed,
		"bypassed":    decision.Bypassed,
		"retry_after": decision.RetryAfter,
		"remaining":   decision.Remaining,
		"tier":        decision.Tier.String(),
		"message":     decision.Message,
	})
}

// acquireRequest captures the payload for a rate-limit-only check.
type acquireRequest struct {
	ActorID   string `json:"actor_id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Operation string `json:"operation"`
	Scope     string `json:"scope"`
	Window    int    `json:"window_seconds"`
	MaxUses   int    `json:"max_uses"`
}

// Acquire runs only the sliding-window half of admission.
func (h *Handler) Acquire(c *gin.Context) {
	var body acquireRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ActorID == "" || body.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id and operation are required"})
		return
	}
	scope, errScope := admission.ParseScope(body.Scope)
	if errScope != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errScope.Error()})
		return
	}

	result := h.gate.TryAcquire(body.Operation, scope, body.ActorID, body.ChannelID, body.GuildID, body.Window, body.MaxUses)
	c.JSON(http.StatusOK, gin.H{
		"allowed":     result.Allowed,
		"retry_after": result.RetryAfter,
		"remaining":   result.Remaining,
	})
}

// cooldownRequest identifies one (actor, operation) cooldown entry.
type cooldownRequest struct {
	ActorID   string `json:"actor_id"`
	Operation string `json:"operation"`
	Seconds   int    `json:"seconds"`
}

// CheckCooldown reports the cooldown state without mutating it beyond
// removing an observed expired entry.
func (h *Handler) CheckCooldown(c *gin.Context) {
	var body cooldownRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ActorID == "" || body.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id and operation are required"})
		return
	}

	status := h.gate.CheckCooldown(body.ActorID, body.Operation)
	c.JSON(http.StatusOK, gin.H{
		"on_cooldown": status.OnCooldown,
		"remaining":   status.Remaining,
	})
}

// StartCooldown stores a cooldown for the key. When no seconds are
// supplied the operation's resolved configuration decides.
func (h *Handler) StartCooldown(c *gin.Context) {
	var body cooldownRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ActorID == "" || body.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id and operation are required"})
		return
	}

	seconds := body.Seconds
	if seconds <= 0 {
		cfg, errResolve := h.gate.ResolveConfig(body.Operation, nil)
		if errResolve != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no cooldown configuration for operation"})
			return
		}
		seconds = cfg.Seconds
	}

	h.gate.SetCooldown(body.ActorID, body.Operation, seconds)
	c.JSON(http.StatusOK, gin.H{"seconds": seconds})
}
