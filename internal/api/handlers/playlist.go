package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/cache"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// PlaylistHandler handles playlist-related requests independently of the main server
type PlaylistHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewPlaylistHandler creates a new PlaylistHandler instance. The cache
// may be nil (e.g. redis down at boot) — reads then go straight to the DB.
func NewPlaylistHandler(db *gorm.DB, c *cache.Cache) *PlaylistHandler {
	return &PlaylistHandler{db: db, cache: c}
}

// CreatePlaylist creates a new empty playlist container
func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playlist := models.Playlist{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
	}

	if err := h.db.Create(&playlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create playlist"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusCreated, playlist)
}

func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist ID"})
		return
	}

	key := fmt.Sprintf("detail:%d", id)
	playlist, err := cache.Cached(c.Request.Context(), h.cache, key, 0, func() (*models.Playlist, error) {
		var p models.Playlist
		// Preload("Tracks") so the Playlist Studio shows the current songs
		if err := h.db.Preload("Tracks").First(&p, id).Error; err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Playlist not found"})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// GetPlaylists fetches all playlists
func (h *PlaylistHandler) GetPlaylists(c *gin.Context) {
	playlists, err := cache.Cached(c.Request.Context(), h.cache, "all", 0, func() ([]models.Playlist, error) {
		out := []models.Playlist{}
		err := h.db.Preload("Tracks").Order("name asc").Find(&out).Error
		return out, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch playlists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": playlists,
	})
}

func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist ID"})
		return
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var playlist models.Playlist
	if err := h.db.First(&playlist, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Playlist not found"})
		return
	}

	// Update fields if they were provided in the JSON payload
	if input.Name != "" {
		playlist.Name = input.Name
	}
	// We always update the description (even if empty string) so users can clear it
	playlist.Description = input.Description

	if input.Color != "" {
		playlist.Color = input.Color
	}

	if err := h.db.Save(&playlist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update playlist metadata"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, playlist)
}

// UpdatePlaylistTracks reorders and replaces tracks in a playlist
func (h *PlaylistHandler) UpdatePlaylistTracks(c *gin.Context) {
	idStr := c.Param("id")
	playlistID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist ID"})
		return
	}

	var input struct {
		TrackIDs []uint `json:"track_ids" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Track IDs"})
		return
	}

	// Declare totalDuration outside the transaction so we can return it at the end
	var totalDuration int

	err = h.db.Transaction(func(tx *gorm.DB) error {
		// 1. Remove existing associations
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}

		// 2. Insert new associations and calculate duration
		for i, trackID := range input.TrackIDs {
			assoc := models.PlaylistTrack{
				PlaylistID: uint(playlistID),
				TrackID:    trackID,
				SortOrder:  i,
			}
			if err := tx.Create(&assoc).Error; err != nil {
				return err
			}

			// Fetch track to get duration
			var t models.Track
			if err := tx.First(&t, trackID).Error; err != nil {
				return err
			}

			totalDuration += int(t.Duration)
		}

		// 3. Update Playlist metadata
		return tx.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("total_duration", totalDuration).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"total_duration": totalDuration,
	})
}

// DeletePlaylist removes a playlist and cleans up its track associations
func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	// Use a transaction to ensure we delete the playlist and its associations cleanly
	err = h.db.Transaction(func(tx *gorm.DB) error {
		// 1. Delete the associations in the join table first
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}

		// 2. Delete the playlist itself
		if err := tx.Delete(&models.Playlist{}, id).Error; err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete playlist"})
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "Playlist deleted successfully"})
}

// invalidate drops every cached playlist view after a mutation. The
// cache is best-effort, so this can silently no-op.
func (h *PlaylistHandler) invalidate(c *gin.Context) {
	if h.cache != nil {
		h.cache.Clear(c.Request.Context())
	}
}
