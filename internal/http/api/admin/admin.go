package admin

import (
	"net/http"
	"strings"

	"github.com/clearway-dev/clearway/internal/admission"
	"github.com/clearway-dev/clearway/internal/config"
	handlers "github.com/clearway-dev/clearway/internal/http/api/admin/handlers"
	"github.com/clearway-dev/clearway/internal/models"
	"github.com/clearway-dev/clearway/internal/overrides"
	"github.com/clearway-dev/clearway/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, gate *admission.Gate, overrideStore *overrides.Store) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg))

	cooldownHandler := handlers.NewCooldownHandler(gate)
	authed.DELETE("/cooldowns", cooldownHandler.Reset)
	authed.POST("/cooldowns/cleanup", cooldownHandler.Cleanup)

	overrideHandler := handlers.NewOverrideHandler(db, overrideStore)
	authed.GET("/overrides", overrideHandler.List)
	authed.PUT("/overrides/:key", overrideHandler.Upsert)
	authed.DELETE("/overrides/:key", overrideHandler.Delete)

	eventHandler := handlers.NewEventHandler(db)
	authed.GET("/events", eventHandler.List)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Next()
	}
}
