package storequeue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/models"
)

// Service serves the per-store play queue and records heartbeats. It
// reads the database directly — the dashboard cache layer sits in
// front of humans, not of store players polling every few seconds.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// StoreSummary is the slim store shape embedded in queue responses
type StoreSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// StatusResponse is the full payload a store player polls for
type StatusResponse struct {
	Store     StoreSummary              `json:"store"`
	Queue     []models.QueueItem        `json:"queue"`
	Emergency *models.EmergencyOverride `json:"emergency"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Status loads the ordered queue and the single highest-priority
// active emergency override for a store. Only the top-priority active
// override is ever surfaced: serving two at once would mean
// conflicting audio on the shop floor.
func (s *Service) Status(ctx context.Context, storeID string) (*StatusResponse, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, "id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store %s not found", storeID)
		}
		return nil, err
	}

	queue := []models.QueueItem{}
	if err := s.db.WithContext(ctx).
		Preload("Track").
		Where("store_id = ?", storeID).
		Order("position ASC").
		Find(&queue).Error; err != nil {
		return nil, err
	}

	override, err := s.activeOverride(ctx, storeID)
	if err != nil {
		return nil, err
	}

	queueReads.Inc()
	if override != nil {
		overrideServes.Inc()
	}

	return &StatusResponse{
		Store:     StoreSummary{ID: store.ID, Name: store.Name, Status: store.Status},
		Queue:     queue,
		Emergency: override,
		Timestamp: time.Now().UTC(),
	}, nil
}

// activeOverride filters to active + time-window-valid rows server
// side before ranking by priority, and returns only the winner.
func (s *Service) activeOverride(ctx context.Context, storeID string) (*models.EmergencyOverride, error) {
	now := time.Now()

	var overrides []models.EmergencyOverride
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Where("starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("priority DESC").
		Limit(1).
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}

	if len(overrides) == 0 {
		return nil, nil
	}
	return &overrides[0], nil
}

// Heartbeat records a store's status report. The store row update and
// the session upsert are two sequential statements with no atomicity
// between them; a failure in the second leaves the status updated and
// the session stale, and the player retries the whole heartbeat.
func (s *Service) Heartbeat(ctx context.Context, storeID, status string, currentTrackID *uint) error {
	now := time.Now()

	updates := map[string]interface{}{
		"status":            status,
		"last_heartbeat_at": now,
	}
	if currentTrackID != nil {
		updates["current_track_id"] = *currentTrackID
	}

	result := s.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store %s not found", storeID)
	}

	heartbeats.WithLabelValues(status).Inc()

	if currentTrackID == nil {
		return nil
	}

	sessionStatus := models.SessionStopped
	if status == models.StoreOnline {
		sessionStatus = models.SessionPlaying
	}

	session := models.PlayerSession{
		StoreID:   storeID,
		TrackID:   *currentTrackID,
		Status:    sessionStatus,
		StartedAt: now,
		UpdatedAt: now,
	}

	// One session row per store: conflict on the PK updates in place
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"track_id", "status", "updated_at"}),
		}).
		Create(&session).Error
}
