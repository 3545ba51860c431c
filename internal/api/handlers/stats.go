package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// A store whose last heartbeat is older than this is considered dark
// even if it never reported "offline".
const heartbeatStaleAfter = 2 * time.Minute

// StatsHandler handles stats-related requests independently of the main server
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler creates a new StatsHandler instance
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// GetStats returns aggregated dashboard statistics
func (h *StatsHandler) GetStats(c *gin.Context) {
	var totalTracks int64
	var totalPlaylists int64
	var totalStores int64
	var storageUsed int64

	// 1. Basic Aggregates
	h.db.Model(&models.Track{}).Count(&totalTracks)
	h.db.Model(&models.Playlist{}).Count(&totalPlaylists)
	h.db.Model(&models.Store{}).Count(&totalStores)
	h.db.Model(&models.Track{}).Select("COALESCE(SUM(file_size), 0)").Scan(&storageUsed)

	// 2. Store liveness
	now := time.Now()
	var onlineStores int64
	h.db.Model(&models.Store{}).
		Where("status = ? AND last_heartbeat_at > ?", models.StoreOnline, now.Add(-heartbeatStaleAfter)).
		Count(&onlineStores)

	// 3. Active emergency broadcasts across the fleet
	var activeOverrides int64
	h.db.Model(&models.EmergencyOverride{}).
		Where("is_active = ?", true).
		Where("starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Count(&activeOverrides)

	// 4. Currently playing sessions
	playing := []models.PlayerSession{}
	h.db.Where("status = ?", models.SessionPlaying).
		Order("updated_at DESC").
		Limit(10).
		Find(&playing)

	// 5. Build Response
	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_tracks":       totalTracks,
			"total_playlists":    totalPlaylists,
			"total_stores":       totalStores,
			"online_stores":      onlineStores,
			"active_emergencies": activeOverrides,
			"storage_used_bytes": storageUsed,
		},
		"now_playing": playing,
		"timestamp":   now.UTC(),
	})
}
