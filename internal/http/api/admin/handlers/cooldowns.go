package handlers

import (
	"net/http"

	"github.com/clearway-dev/clearway/internal/admission"
	"github.com/gin-gonic/gin"
)

// CooldownHandler exposes administrative cooldown operations.
type CooldownHandler struct {
	gate *admission.Gate
}

// NewCooldownHandler constructs a cooldown handler.
func NewCooldownHandler(gate *admission.Gate) *CooldownHandler {
	return &CooldownHandler{gate: gate}
}

// resetCooldownRequest identifies the cooldown entry to remove.
type resetCooldownRequest struct {
	ActorID   string `json:"actor_id"`  // Actor whose cooldown resets.
	Operation string `json:"operation"` // Operation key.
}

// Reset removes one (actor, operation) cooldown entry.
func (h *CooldownHandler) Reset(c *gin.Context) {
	var body resetCooldownRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.ActorID == "" || body.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id and operation are required"})
		return
	}

	removed := h.gate.ResetCooldown(body.ActorID, body.Operation)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Cleanup removes all expired cooldown entries.
func (h *CooldownHandler) Cleanup(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": h.gate.CleanupExpired()})
}
