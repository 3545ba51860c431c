package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/storage"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/utils"
)

// TrackHandler handles track-related requests and file uploads
type TrackHandler struct {
	db      *gorm.DB
	storage *storage.Client
}

// NewTrackHandler creates a new TrackHandler instance with its required dependencies
func NewTrackHandler(db *gorm.DB, st *storage.Client) *TrackHandler {
	return &TrackHandler{
		db:      db,
		storage: st,
	}
}

// LibraryTrack keeps list responses lightweight — no need to ship
// every column for 100 rows of an infinite scroll.
type LibraryTrack struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration float64 `json:"duration"`
}

// GetTracks returns a paginated, lightweight list of tracks
func (h *TrackHandler) GetTracks(c *gin.Context) {
	// 1. Parse Query Parameters
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := c.Query("search")
	sortBy := c.DefaultQuery("sort", "newest")

	if limit > 200 {
		limit = 200 // Hard cap to protect the server
	}

	// 2. Build the Query
	query := h.db.Model(&models.Track{})

	// 3. Apply Search
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("artist ILIKE ? OR title ILIKE ?", searchTerm, searchTerm)
	}

	// 4. Get Total Count (for pagination math in the dashboard)
	var total int64
	query.Count(&total)

	// 5. Apply Sorting
	switch sortBy {
	case "alphabetical":
		query = query.Order("title ASC")
	case "duration":
		query = query.Order("duration DESC")
	default: // "newest"
		query = query.Order("id DESC")
	}

	// 6. Fetch ONLY the required columns into our lightweight struct
	var tracks []LibraryTrack
	result := query.Select("id, title, artist, duration").
		Limit(limit).
		Offset(offset).
		Find(&tracks)

	if result.Error != nil {
		slog.Error("Failed to fetch tracks", "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 7. Return Response
	c.JSON(http.StatusOK, gin.H{
		"data": tracks,
		"meta": gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetTrack returns the FULL metadata for a single track, plus the URL
// store players stream it from
func (h *TrackHandler) GetTrack(c *gin.Context) {
	id := c.Param("id")

	var track models.Track
	if err := h.db.First(&track, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"track":      track,
		"stream_url": h.storage.PublicURL(track.Key),
	})
}

// UploadTrack stores an uploaded audio file and registers it in the library
func (h *TrackHandler) UploadTrack(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer file.Close()

	// Sniff embedded tags; uploads without tags fall back to the filename
	title := utils.CleanFilename(fileHeader.Filename)
	artist := "Unknown Artist"
	album := ""
	genre := ""
	year := ""

	if meta, err := tag.ReadFrom(file); err == nil {
		if meta.Title() != "" {
			title = meta.Title()
		}
		if meta.Artist() != "" {
			artist = meta.Artist()
		}
		album = meta.Album()
		genre = meta.Genre()
		if meta.Year() != 0 {
			year = strconv.Itoa(meta.Year())
		}
	}

	// Rewind: tag sniffing consumed the header bytes
	if _, err := file.Seek(0, 0); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not rewind upload"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("tracks/%s/%s%s",
		utils.Sanitize(artist, "unknown"),
		utils.Sanitize(title, "untitled"),
		ext,
	)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	if err := h.storage.UploadAudio(key, file, contentType); err != nil {
		slog.Error("Upload to storage failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
		return
	}

	track := models.Track{
		Key:      key,
		Title:    title,
		Artist:   artist,
		Album:    album,
		Genre:    genre,
		Year:     year,
		Format:   strings.TrimPrefix(ext, "."),
		FileSize: fileHeader.Size,
	}

	if err := h.db.Create(&track).Error; err != nil {
		slog.Error("Track insert failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register track"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"track":      track,
		"stream_url": h.storage.PublicURL(track.Key),
	})
}

// DeleteTrack removes a track from the library and its audio from storage
func (h *TrackHandler) DeleteTrack(c *gin.Context) {
	id := c.Param("id")

	var track models.Track
	if err := h.db.First(&track, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", track.ID).Delete(&models.PlaylistTrack{}).Error; err != nil {
			return err
		}
		return tx.Delete(&track).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete track"})
		return
	}

	// Best-effort: the DB row is gone, orphaned audio is acceptable
	if err := h.storage.DeleteAudio(track.Key); err != nil {
		slog.Error("Audio cleanup failed", "key", track.Key, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Track deleted successfully"})
}
