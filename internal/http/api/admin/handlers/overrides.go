package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clearway-dev/clearway/internal/models"
	"github.com/clearway-dev/clearway/internal/overrides"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideHandler manages admin CRUD for cooldown overrides.
type OverrideHandler struct {
	db    *gorm.DB         // Database handle for override rows.
	store *overrides.Store // Snapshot refreshed after writes.
}

// NewOverrideHandler constructs an override handler.
func NewOverrideHandler(db *gorm.DB, store *overrides.Store) *OverrideHandler {
	return &OverrideHandler{db: db, store: store}
}

// List returns all override rows sorted by operation key.
func (h *OverrideHandler) List(c *gin.Context) {
	var rows []models.CooldownOverride
	if errFind := h.db.WithContext(c.Request.Context()).Order("operation_key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list overrides failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"operation":  row.OperationKey,
			"seconds":    row.Seconds,
			"note":       row.Note,
			"updated_at": row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"overrides": out})
}

// upsertOverrideRequest captures the payload for creating or updating
// an override.
type upsertOverrideRequest struct {
	Seconds int    `json:"seconds"` // Override cooldown in seconds.
	Note    string `json:"note"`    // Operator note.
}

// Upsert creates or updates the override row, then refreshes the
// snapshot.
func (h *OverrideHandler) Upsert(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	var body upsertOverrideRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Seconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be non-negative"})
		return
	}

	record := models.CooldownOverride{
		OperationKey: key,
		Seconds:      body.Seconds,
		Note:         strings.TrimSpace(body.Note),
	}
	if errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operation_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"seconds", "note", "updated_at"}),
	}).Create(&record).Error; errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save override failed"})
		return
	}

	if errRefresh := h.store.Refresh(c.Request.Context()); errRefresh != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh override snapshot failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operation": key, "seconds": body.Seconds})
}

// Delete removes the override row and refreshes the snapshot.
func (h *OverrideHandler) Delete(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}

	var existing models.CooldownOverride
	if errFind := h.db.WithContext(c.Request.Context()).Where("operation_key = ?", key).First(&existing).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&existing).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete override failed"})
		return
	}

	if errRefresh := h.store.Refresh(c.Request.Context()); errRefresh != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh override snapshot failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": key})
}
