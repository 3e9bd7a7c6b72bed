package overrides

import (
	"context"
	"testing"

	"github.com/clearway-dev/clearway/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if errMigrate := db.AutoMigrate(&models.CooldownOverride{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM cooldown_overrides")
	})
	return db
}

func TestStoreStaticSeed(t *testing.T) {
	store := NewStore(nil, map[string]int{"wallet.transfer": 45})

	snapshot := store.Snapshot()
	if snapshot["wallet.transfer"] != 45 {
		t.Fatalf("expected static override in snapshot, got %v", snapshot)
	}
}

func TestStoreRefreshPrefersDatabaseRows(t *testing.T) {
	db := openTestDB(t)
	if errCreate := db.Create(&models.CooldownOverride{OperationKey: "wallet.transfer", Seconds: 90}).Error; errCreate != nil {
		t.Fatalf("seed override: %v", errCreate)
	}
	if errCreate := db.Create(&models.CooldownOverride{OperationKey: "giveaway.spin", Seconds: 120}).Error; errCreate != nil {
		t.Fatalf("seed override: %v", errCreate)
	}

	store := NewStore(db, map[string]int{"wallet.transfer": 45})
	if errRefresh := store.Refresh(context.Background()); errRefresh != nil {
		t.Fatalf("refresh: %v", errRefresh)
	}

	snapshot := store.Snapshot()
	if snapshot["wallet.transfer"] != 90 {
		t.Fatalf("expected database row to win, got %d", snapshot["wallet.transfer"])
	}
	if snapshot["giveaway.spin"] != 120 {
		t.Fatalf("expected database-only key present, got %v", snapshot)
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewStore(nil, map[string]int{"wallet.transfer": 45})

	snapshot := store.Snapshot()
	snapshot["wallet.transfer"] = 1

	if store.Snapshot()["wallet.transfer"] != 45 {
		t.Fatalf("expected snapshot mutation not to leak into store")
	}
}
