package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueueItem is one slot in a store's playback queue, ordered by Position.
// The queue is produced by the scheduling side of the dashboard; the
// queue service only ever reads it.
type QueueItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	StoreID    string         `gorm:"index;size:36;not null" json:"store_id"`
	Position   int            `gorm:"index" json:"position"`
	SourceType string         `gorm:"size:32" json:"source_type"` // playlist, manual, auto
	Metadata   datatypes.JSON `json:"metadata"`

	TrackID uint  `json:"track_id"`
	Track   Track `json:"track"`
}

// TableName overrides the default pluralization
func (QueueItem) TableName() string {
	return "playlist_queue"
}

// EmergencyOverride is a priority-ranked, time-windowed interrupt that
// preempts normal queue playback for a store. It is "active" when the
// flag is set, the window has started and (if bounded) has not ended.
type EmergencyOverride struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StoreID string `gorm:"index;size:36;not null" json:"store_id"`
	Title   string `gorm:"not null" json:"title"`
	Message string `json:"message"`

	Priority int  `gorm:"default:0;index" json:"priority"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at"`
	RepeatIntervalSecs *int       `json:"repeat_interval_secs"`

	AudioKey string `json:"audio_key"` // storage key of the announcement audio
}

func (EmergencyOverride) TableName() string {
	return "emergency_overrides"
}
