package relations

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// SetupRelationsDB creates a throwaway in-memory DB for testing
func SetupRelationsDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite open failed: %v", err)
	}
	if err := d.AutoMigrate(&models.Playlist{}, &models.Track{}, &models.PlaylistTrack{}, &models.PlaylistRelationship{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return d
}

func seedPlaylist(t *testing.T, db *gorm.DB, name string, trackIDs ...uint) uint {
	t.Helper()
	p := models.Playlist{Name: name}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed playlist %s: %v", name, err)
	}
	for i, tid := range trackIDs {
		assoc := models.PlaylistTrack{PlaylistID: p.ID, TrackID: tid, SortOrder: i}
		if err := db.Create(&assoc).Error; err != nil {
			t.Fatalf("seed playlist_track: %v", err)
		}
	}
	return p.ID
}

func TestCreateAndListRelated(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)
	ctx := context.Background()

	source := seedPlaylist(t, db, "Source")
	weak := seedPlaylist(t, db, "Weak Match")
	strong := seedPlaylist(t, db, "Strong Match")

	if _, err := client.Create(ctx, source, weak, models.RelationSimilar, 0.2, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := client.Create(ctx, source, strong, models.RelationInspired, 0.9, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	related, err := client.ListRelated(ctx, source)
	if err != nil {
		t.Fatalf("ListRelated failed: %v", err)
	}

	if len(related) != 2 {
		t.Fatalf("Expected 2 related playlists, got %d", len(related))
	}
	// Ordered by strength descending
	if related[0].RelatedName != "Strong Match" || related[1].RelatedName != "Weak Match" {
		t.Errorf("Wrong order: %s, %s", related[0].RelatedName, related[1].RelatedName)
	}
	if related[0].Kind != models.RelationInspired {
		t.Errorf("Expected kind 'inspired', got %q", related[0].Kind)
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)

	if _, err := client.Create(context.Background(), 1, 2, "bogus", 0, nil); err == nil {
		t.Error("Expected an error for an unknown relationship kind")
	}
}

func TestUpdateChangesKindOnly(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)
	ctx := context.Background()

	source := seedPlaylist(t, db, "Source")
	related := seedPlaylist(t, db, "Related")
	if _, err := client.Create(ctx, source, related, models.RelationSimilar, 0.5, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	kind := models.RelationAutoGenerated
	if err := client.Update(ctx, source, related, Changes{Kind: &kind}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var rel models.PlaylistRelationship
	if err := db.Where("source_playlist_id = ? AND related_playlist_id = ?", source, related).First(&rel).Error; err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if rel.Kind != models.RelationAutoGenerated {
		t.Errorf("Kind not updated, got %q", rel.Kind)
	}
	if rel.Strength != 0.5 {
		t.Errorf("Strength should be untouched, got %v", rel.Strength)
	}
}

func TestUpdateMissingPairIsNoop(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)

	kind := models.RelationSimilar
	if err := client.Update(context.Background(), 404, 405, Changes{Kind: &kind}); err != nil {
		t.Errorf("Update on a missing pair must succeed as a no-op, got %v", err)
	}
}

func TestDeleteMissingPairIsNoop(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)

	if err := client.Delete(context.Background(), 404, 405); err != nil {
		t.Errorf("Delete on a missing pair must succeed as a no-op, got %v", err)
	}
}

func TestDeleteRemovesPair(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)
	ctx := context.Background()

	source := seedPlaylist(t, db, "Source")
	related := seedPlaylist(t, db, "Related")
	if _, err := client.Create(ctx, source, related, models.RelationSimilar, 0.5, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := client.Delete(ctx, source, related); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	rest, err := client.ListRelated(ctx, source)
	if err != nil {
		t.Fatalf("ListRelated failed: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("Expected no relationships after delete, got %d", len(rest))
	}
}

func TestFindSimilarRanksBySharedTracks(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)
	ctx := context.Background()

	// Source has tracks {A,B,C}; P1 shares 2, P2 shares 1, P3 shares 0
	const (
		trackA uint = 1
		trackB uint = 2
		trackC uint = 3
		trackD uint = 4
		trackE uint = 5
	)

	source := seedPlaylist(t, db, "Source", trackA, trackB, trackC)
	p1 := seedPlaylist(t, db, "P1", trackB, trackC, trackD)
	p2 := seedPlaylist(t, db, "P2", trackA)
	seedPlaylist(t, db, "P3", trackE)

	similar, err := client.FindSimilar(ctx, source, 5)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if len(similar) != 2 {
		t.Fatalf("Expected exactly 2 candidates, got %d: %+v", len(similar), similar)
	}
	if similar[0].PlaylistID != p1 || similar[0].SharedTracks != 2 {
		t.Errorf("First candidate should be P1 with 2 shared tracks, got %+v", similar[0])
	}
	if similar[1].PlaylistID != p2 || similar[1].SharedTracks != 1 {
		t.Errorf("Second candidate should be P2 with 1 shared track, got %+v", similar[1])
	}
	for _, s := range similar {
		if s.PlaylistID == source {
			t.Error("Source playlist must never appear in its own results")
		}
	}
}

func TestFindSimilarRespectsLimit(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)
	ctx := context.Background()

	source := seedPlaylist(t, db, "Source", 1, 2, 3)
	seedPlaylist(t, db, "C1", 1, 2, 3)
	seedPlaylist(t, db, "C2", 1, 2)
	seedPlaylist(t, db, "C3", 1)

	similar, err := client.FindSimilar(ctx, source, 2)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(similar) != 2 {
		t.Fatalf("Expected limit to cap results at 2, got %d", len(similar))
	}
	if similar[0].SharedTracks < similar[1].SharedTracks {
		t.Error("Results must be ordered by shared-track count descending")
	}
}

func TestFindSimilarEmptySourcePlaylist(t *testing.T) {
	db := SetupRelationsDB(t)
	client := New(db)

	source := seedPlaylist(t, db, "Empty") // no tracks
	seedPlaylist(t, db, "Other", 1, 2)

	similar, err := client.FindSimilar(context.Background(), source, 5)
	if err != nil {
		t.Fatalf("Zero-track source must not error: %v", err)
	}
	if len(similar) != 0 {
		t.Errorf("Expected empty result for a source with no tracks, got %+v", similar)
	}
}
