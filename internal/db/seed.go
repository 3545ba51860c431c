package database

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// Fixed ID so re-running the seed never duplicates the demo store.
const demoStoreID = "00000000-0000-0000-0000-000000000001"

// SeedDemoStore creates a single offline demo store so a fresh install
// has something to point a player client at. Safe to call on every boot.
func SeedDemoStore(db *gorm.DB) {
	store := models.Store{
		ID:       demoStoreID,
		Name:     "Demo Store",
		Location: "Head Office",
		Status:   models.StoreOffline,
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&store)
	if result.Error != nil {
		log.Printf("⚠️ Demo store seed failed: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("✅ Seeded demo store %s", demoStoreID)
	}
}
