package storequeue

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// SetupQueueDB creates a throwaway in-memory DB for testing
func SetupQueueDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite open failed: %v", err)
	}
	err = d.AutoMigrate(
		&models.Store{},
		&models.PlayerSession{},
		&models.Track{},
		&models.QueueItem{},
		&models.EmergencyOverride{},
	)
	if err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return d
}

func seedStore(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	if err := db.Create(&models.Store{ID: id, Name: name, Status: models.StoreOffline}).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func TestStatusUnknownStore(t *testing.T) {
	svc := NewService(SetupQueueDB(t))

	if _, err := svc.Status(context.Background(), "no-such-store"); err == nil {
		t.Fatal("Expected an error for an unknown store")
	}
}

func TestStatusReturnsOrderedQueue(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	track := models.Track{Key: "audio/one.mp3", Title: "One"}
	db.Create(&track)

	// Insert out of order on purpose
	db.Create(&models.QueueItem{StoreID: "s1", Position: 2, SourceType: "playlist", TrackID: track.ID})
	db.Create(&models.QueueItem{StoreID: "s1", Position: 0, SourceType: "playlist", TrackID: track.ID})
	db.Create(&models.QueueItem{StoreID: "s1", Position: 1, SourceType: "manual", TrackID: track.ID})

	resp, err := svc.Status(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if resp.Store.Name != "Mall Branch" {
		t.Errorf("Wrong store summary: %+v", resp.Store)
	}
	if len(resp.Queue) != 3 {
		t.Fatalf("Expected 3 queue items, got %d", len(resp.Queue))
	}
	for i, item := range resp.Queue {
		if item.Position != i {
			t.Errorf("Queue out of order at index %d: position %d", i, item.Position)
		}
	}
	if resp.Queue[0].Track.Title != "One" {
		t.Error("Track should be preloaded on queue items")
	}
	if resp.Emergency != nil {
		t.Error("No override was seeded, emergency must be nil")
	}
}

func TestTopPriorityOverrideWins(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	now := time.Now()
	db.Create(&models.EmergencyOverride{
		ID: "ov-low", StoreID: "s1", Title: "Low", Priority: 5,
		IsActive: true, StartsAt: now.Add(-time.Hour),
	})
	db.Create(&models.EmergencyOverride{
		ID: "ov-high", StoreID: "s1", Title: "High", Priority: 10,
		IsActive: true, StartsAt: now.Add(-time.Hour),
	})

	resp, err := svc.Status(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if resp.Emergency == nil {
		t.Fatal("Expected the active override to be surfaced")
	}
	if resp.Emergency.ID != "ov-high" {
		t.Errorf("Expected the priority-10 override, got %s (priority %d)", resp.Emergency.ID, resp.Emergency.Priority)
	}
}

func TestStaleOverridesNeverServed(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	now := time.Now()
	ended := now.Add(-time.Minute)

	// Inactive flag
	db.Create(&models.EmergencyOverride{
		ID: "ov-off", StoreID: "s1", Title: "Disabled", Priority: 50,
		IsActive: false, StartsAt: now.Add(-time.Hour),
	})
	// Window already closed
	db.Create(&models.EmergencyOverride{
		ID: "ov-expired", StoreID: "s1", Title: "Expired", Priority: 40,
		IsActive: true, StartsAt: now.Add(-2 * time.Hour), EndsAt: &ended,
	})
	// Not started yet
	db.Create(&models.EmergencyOverride{
		ID: "ov-future", StoreID: "s1", Title: "Future", Priority: 30,
		IsActive: true, StartsAt: now.Add(time.Hour),
	})
	// Belongs to another store
	seedStore(t, db, "s2", "Other Branch")
	db.Create(&models.EmergencyOverride{
		ID: "ov-other", StoreID: "s2", Title: "Elsewhere", Priority: 99,
		IsActive: true, StartsAt: now.Add(-time.Hour),
	})

	resp, err := svc.Status(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if resp.Emergency != nil {
		t.Errorf("No override should be active for s1, got %s", resp.Emergency.ID)
	}
}

func TestHeartbeatOnlineUpsertsPlayingSession(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	trackID := uint(7)
	if err := svc.Heartbeat(context.Background(), "s1", models.StoreOnline, &trackID); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	var store models.Store
	db.First(&store, "id = ?", "s1")
	if store.Status != models.StoreOnline {
		t.Errorf("Store status not updated, got %q", store.Status)
	}
	if store.LastHeartbeatAt == nil {
		t.Error("Heartbeat timestamp not recorded")
	}

	var session models.PlayerSession
	if err := db.First(&session, "store_id = ?", "s1").Error; err != nil {
		t.Fatalf("Session row missing: %v", err)
	}
	if session.Status != models.SessionPlaying {
		t.Errorf("Online store should derive a 'playing' session, got %q", session.Status)
	}
	if session.TrackID != 7 {
		t.Errorf("Wrong track on session: %d", session.TrackID)
	}
}

func TestHeartbeatOfflineWithoutTrackSkipsSession(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	if err := svc.Heartbeat(context.Background(), "s1", models.StoreOffline, nil); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	var store models.Store
	db.First(&store, "id = ?", "s1")
	if store.Status != models.StoreOffline {
		t.Errorf("Store status not updated, got %q", store.Status)
	}

	var count int64
	db.Model(&models.PlayerSession{}).Count(&count)
	if count != 0 {
		t.Errorf("No session row may be written without a track id, found %d", count)
	}
}

func TestHeartbeatOfflineWithTrackDerivesStopped(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")

	trackID := uint(3)
	if err := svc.Heartbeat(context.Background(), "s1", models.StoreOffline, &trackID); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	var session models.PlayerSession
	if err := db.First(&session, "store_id = ?", "s1").Error; err != nil {
		t.Fatalf("Session row missing: %v", err)
	}
	if session.Status != models.SessionStopped {
		t.Errorf("Offline store should derive a 'stopped' session, got %q", session.Status)
	}
}

func TestHeartbeatUpsertsSingleSessionRow(t *testing.T) {
	db := SetupQueueDB(t)
	svc := NewService(db)
	seedStore(t, db, "s1", "Mall Branch")
	ctx := context.Background()

	first := uint(1)
	second := uint(2)
	if err := svc.Heartbeat(ctx, "s1", models.StoreOnline, &first); err != nil {
		t.Fatalf("First heartbeat failed: %v", err)
	}
	if err := svc.Heartbeat(ctx, "s1", models.StoreOnline, &second); err != nil {
		t.Fatalf("Second heartbeat failed: %v", err)
	}

	var sessions []models.PlayerSession
	db.Find(&sessions)
	if len(sessions) != 1 {
		t.Fatalf("Expected exactly one session row per store, got %d", len(sessions))
	}
	if sessions[0].TrackID != 2 {
		t.Errorf("Upsert should have replaced the track, got %d", sessions[0].TrackID)
	}
}

func TestHeartbeatUnknownStore(t *testing.T) {
	svc := NewService(SetupQueueDB(t))

	if err := svc.Heartbeat(context.Background(), "ghost", models.StoreOnline, nil); err == nil {
		t.Fatal("Expected an error for an unknown store")
	}
}
