package db

import (
	"fmt"
	"strings"

	"github.com/clearway-dev/clearway/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database named by the DSN. DSNs prefixed with
// `sqlite://` (or the bare `:memory:` form) open an embedded SQLite
// database; everything else is treated as PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if path, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		return gorm.Open(sqlite.Open(path), gormCfg)
	}
	if strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}
	return gorm.Open(postgres.Open(dsn), gormCfg)
}

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.CooldownOverride{},
		&models.AuditEvent{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	var ddls []ddl
	if IsSQLite(conn) {
		ddls = []ddl{
			{
				name: "idx_audit_events_actor_operation",
				sql: `
					CREATE INDEX IF NOT EXISTS idx_audit_events_actor_operation
					ON audit_events (actor_id, operation_key, created_at)
				`,
			},
		}
	} else {
		ddls = []ddl{
			{
				name: "idx_audit_events_actor_operation",
				sql: `
					CREATE INDEX IF NOT EXISTS idx_audit_events_actor_operation
					ON audit_events (actor_id, operation_key, created_at DESC)
				`,
			},
			{
				name: "idx_audit_events_kind_created",
				sql: `
					CREATE INDEX IF NOT EXISTS idx_audit_events_kind_created
					ON audit_events (kind, created_at DESC)
				`,
			},
		}
	}
	for _, statement := range ddls {
		if errExec := conn.Exec(statement.sql).Error; errExec != nil {
			return fmt.Errorf("db: apply %s: %w", statement.name, errExec)
		}
	}
	return nil
}
