package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/cache"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// StoreHandler manages broadcast endpoints (retail locations)
type StoreHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewStoreHandler creates a new StoreHandler instance
func NewStoreHandler(db *gorm.DB, c *cache.Cache) *StoreHandler {
	return &StoreHandler{db: db, cache: c}
}

// CreateStore registers a new broadcast endpoint
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Location string `json:"location"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := models.Store{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Location: input.Location,
		Status:   models.StoreOffline,
	}

	if err := h.db.Create(&store).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	if h.cache != nil {
		h.cache.Clear(c.Request.Context())
	}
	c.JSON(http.StatusCreated, store)
}

// GetStores lists all stores. Cached for a short window — heartbeat
// staleness of a few seconds is fine for the dashboard overview.
func (h *StoreHandler) GetStores(c *gin.Context) {
	stores, err := cache.Cached(c.Request.Context(), h.cache, "all", 15*time.Second, func() ([]models.Store, error) {
		out := []models.Store{}
		err := h.db.Order("name asc").Find(&out).Error
		return out, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stores})
}

// GetStore returns one store plus its current player session (if any)
func (h *StoreHandler) GetStore(c *gin.Context) {
	id := c.Param("id")

	var store models.Store
	if err := h.db.First(&store, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var session models.PlayerSession
	var sessionPtr *models.PlayerSession
	if err := h.db.First(&session, "store_id = ?", id).Error; err == nil {
		sessionPtr = &session
	}

	c.JSON(http.StatusOK, gin.H{
		"store":   store,
		"session": sessionPtr,
	})
}

// DeleteStore removes a store and its queue/session/override rows
func (h *StoreHandler) DeleteStore(c *gin.Context) {
	id := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.QueueItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.EmergencyOverride{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.PlayerSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Store{}, "id = ?", id).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete store"})
		return
	}

	if h.cache != nil {
		h.cache.Clear(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}
