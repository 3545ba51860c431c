package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// EmergencyHandler manages emergency audio overrides for stores
type EmergencyHandler struct {
	db *gorm.DB
}

// NewEmergencyHandler creates a new EmergencyHandler instance
func NewEmergencyHandler(db *gorm.DB) *EmergencyHandler {
	return &EmergencyHandler{db: db}
}

// CreateOverride schedules an emergency broadcast for a store
func (h *EmergencyHandler) CreateOverride(c *gin.Context) {
	storeID := c.Param("id")

	// The store must exist before we attach an override to it
	var store models.Store
	if err := h.db.First(&store, "id = ?", storeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	var input struct {
		Title              string     `json:"title" binding:"required"`
		Message            string     `json:"message"`
		Priority           int        `json:"priority"`
		StartsAt           *time.Time `json:"starts_at"`
		EndsAt             *time.Time `json:"ends_at"`
		RepeatIntervalSecs *int       `json:"repeat_interval_secs"`
		AudioKey           string     `json:"audio_key"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startsAt := time.Now()
	if input.StartsAt != nil {
		startsAt = *input.StartsAt
	}
	if input.EndsAt != nil && !input.EndsAt.After(startsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	override := models.EmergencyOverride{
		ID:                 uuid.NewString(),
		StoreID:            storeID,
		Title:              input.Title,
		Message:            input.Message,
		Priority:           input.Priority,
		IsActive:           true,
		StartsAt:           startsAt,
		EndsAt:             input.EndsAt,
		RepeatIntervalSecs: input.RepeatIntervalSecs,
		AudioKey:           input.AudioKey,
	}

	if err := h.db.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create override"})
		return
	}

	c.JSON(http.StatusCreated, override)
}

// ListOverrides returns a store's overrides, highest priority first
func (h *EmergencyHandler) ListOverrides(c *gin.Context) {
	storeID := c.Param("id")

	overrides := []models.EmergencyOverride{}
	if err := h.db.Where("store_id = ?", storeID).Order("priority DESC").Find(&overrides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch overrides"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overrides})
}

// DeactivateOverride ends a broadcast early by clearing the active flag
func (h *EmergencyHandler) DeactivateOverride(c *gin.Context) {
	id := c.Param("id")

	result := h.db.Model(&models.EmergencyOverride{}).
		Where("id = ?", id).
		Update("is_active", false)

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate override"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Override deactivated"})
}

// DeleteOverride removes an override entirely
func (h *EmergencyHandler) DeleteOverride(c *gin.Context) {
	id := c.Param("id")

	result := h.db.Delete(&models.EmergencyOverride{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete override"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Override deleted"})
}
