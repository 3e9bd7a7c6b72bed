package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/clearway-dev/clearway/internal/db"
	"github.com/clearway-dev/clearway/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultEventPageSize = 50
	maxEventPageSize     = 500
)

// EventHandler serves the persisted audit event log.
type EventHandler struct {
	db *gorm.DB
}

// NewEventHandler constructs an event handler.
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// List returns audit events newest first, filterable by actor,
// operation (exact or case-insensitive substring), kind, and the
// recorded denial reason.
func (h *EventHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.AuditEvent{})

	if actorID := strings.TrimSpace(c.Query("actor_id")); actorID != "" {
		query = query.Where("actor_id = ?", actorID)
	}
	if operation := strings.TrimSpace(c.Query("operation")); operation != "" {
		query = query.Where("operation_key = ?", operation)
	}
	if search := strings.TrimSpace(c.Query("operation_like")); search != "" {
		pattern := db.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(h.db, "operation_key"), pattern)
	}
	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if reason := strings.TrimSpace(c.Query("reason")); reason != "" {
		query = query.Where(db.JSONExtractTextExpr(h.db, "details", "reason")+" = ?", reason)
	}

	limit := parsePositiveQueryInt(c.Query("limit"), defaultEventPageSize)
	if limit > maxEventPageSize {
		limit = maxEventPageSize
	}
	offset := parsePositiveQueryInt(c.Query("offset"), 0)

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count events failed"})
		return
	}

	var rows []models.AuditEvent
	if errFind := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list events failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		details := map[string]any{}
		if len(row.Details) > 0 {
			_ = json.Unmarshal(row.Details, &details)
		}
		out = append(out, gin.H{
			"id":         row.ID,
			"kind":       row.Kind,
			"actor_id":   row.ActorID,
			"operation":  row.OperationKey,
			"details":    details,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out, "total": total})
}

// parsePositiveQueryInt parses a non-negative integer query parameter,
// falling back to the default on bad input.
func parsePositiveQueryInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, errParse := strconv.Atoi(raw)
	if errParse != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
