package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/clearway-dev/clearway/internal/db"
	"github.com/clearway-dev/clearway/internal/models"
)

func TestStoreSink_PersistsEvents(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "clearway-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	sink := NewStoreSink(conn)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sink.Record(Event{
		Kind:         KindViolation,
		ActorID:      "user-1",
		OperationKey: "wallet.transfer",
		Details:      map[string]any{"retry_after": 30},
		At:           at,
	})
	sink.Record(Event{
		Kind:         KindBypass,
		ActorID:      "admin-1",
		OperationKey: "wallet.transfer",
		At:           at,
	})
	sink.Close()

	var records []models.AuditEvent
	if errFind := conn.Order("id asc").Find(&records).Error; errFind != nil {
		t.Fatalf("find events: %v", errFind)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 persisted events, got %d", len(records))
	}

	first := records[0]
	if first.Kind != KindViolation || first.ActorID != "user-1" || first.OperationKey != "wallet.transfer" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	var details map[string]any
	if errUnmarshal := json.Unmarshal(first.Details, &details); errUnmarshal != nil {
		t.Fatalf("unmarshal details: %v", errUnmarshal)
	}
	if got, ok := details["retry_after"].(float64); !ok || int(got) != 30 {
		t.Fatalf("expected retry_after detail 30, got %v", details["retry_after"])
	}

	if len(records[1].Details) != 0 {
		t.Fatalf("expected empty details for bypass event, got %s", records[1].Details)
	}
}

func TestStoreSink_RecordAfterCloseIsNoop(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "clearway-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	sink := NewStoreSink(conn)
	sink.Close()
	sink.Record(Event{Kind: KindViolation, ActorID: "user-1", OperationKey: "order.create"})

	var count int64
	if errCount := conn.Model(&models.AuditEvent{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count events: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected no events after close, got %d", count)
	}
}
