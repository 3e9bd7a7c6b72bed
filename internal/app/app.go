package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clearway-dev/clearway/internal/admission"
	"github.com/clearway-dev/clearway/internal/audit"
	"github.com/clearway-dev/clearway/internal/clock"
	"github.com/clearway-dev/clearway/internal/config"
	"github.com/clearway-dev/clearway/internal/db"
	adminapi "github.com/clearway-dev/clearway/internal/http/api/admin"
	admissionapi "github.com/clearway-dev/clearway/internal/http/api/admission"
	"github.com/clearway-dev/clearway/internal/models"
	"github.com/clearway-dev/clearway/internal/overrides"
	"github.com/clearway-dev/clearway/internal/security"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the admission service with database-backed
// collaborators and serves until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	admCfg, errAdm := config.LoadAdmissionConfig(configPath)
	if errAdm != nil {
		return errAdm
	}

	if errSeed := EnsureDefaultAdmin(conn, admCfg.Admin); errSeed != nil {
		return errSeed
	}

	overrideStore := overrides.NewStore(conn, admCfg.CooldownOverrides)
	if errRefresh := overrideStore.Refresh(ctx); errRefresh != nil {
		return errRefresh
	}

	clk := clock.System{}

	storeSink := audit.NewStoreSink(conn)
	defer storeSink.Close()
	sinks := audit.Fanout{audit.NewLogSink(), storeSink}
	if admCfg.AuditPublisher.Enabled {
		publisher := audit.NewPublisher(audit.PublisherConfig{
			Addr:     admCfg.AuditPublisher.Addr,
			Password: admCfg.AuditPublisher.Password,
			DB:       admCfg.AuditPublisher.DB,
			Channel:  admCfg.AuditPublisher.Channel,
		}, clk.Now, nil)
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	gate := admission.NewGate(admission.GateOptions{
		Resolver:   admission.NewConfigResolver(overrideStore.Provider(), sinks, clk.Wall),
		Limiter:    admission.NewLimiter(clk.Now),
		Cooldowns:  admission.NewCooldownManager(clk.Now),
		Privileged: PrivilegeFromList(admCfg.PrivilegedActors),
		Sink:       sinks,
		WallFn:     clk.Wall,
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	admissionapi.RegisterRoutes(engine, gate)
	adminapi.RegisterAdminRoutes(engine, conn, jwtCfg, gate, overrideStore)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("admission service listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// PrivilegeFromList builds a privilege predicate from a fixed actor
// list. The context id is ignored: privilege is actor-global here.
func PrivilegeFromList(actorIDs []string) admission.PrivilegeFn {
	if len(actorIDs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(actorIDs))
	for _, id := range actorIDs {
		set[id] = struct{}{}
	}
	return func(actorID, _ string) bool {
		_, ok := set[actorID]
		return ok
	}
}

// EnsureDefaultAdmin seeds the bootstrap admin account when none exist.
func EnsureDefaultAdmin(conn *gorm.DB, bootstrap config.AdminBootstrap) error {
	if bootstrap.Username == "" || bootstrap.Password == "" {
		return nil
	}

	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return errCount
	}
	if count > 0 {
		return nil
	}

	hash, errHash := security.HashPassword(bootstrap.Password)
	if errHash != nil {
		return errHash
	}
	admin := models.Admin{
		Username:     bootstrap.Username,
		PasswordHash: hash,
		Active:       true,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("username", bootstrap.Username).Info("seeded bootstrap admin account")
	return nil
}
