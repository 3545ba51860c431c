package models

import "time"

// Store status values as reported by heartbeats
const (
	StoreOnline  = "online"
	StoreOffline = "offline"
)

// Player session status, derived from the store status on heartbeat
const (
	SessionPlaying = "playing"
	SessionStopped = "stopped"
)

// Store is a physical broadcast endpoint (e.g. a retail location)
// consuming a playlist queue.
type Store struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null" json:"name"`
	Location string `json:"location"`

	Status          string     `gorm:"default:'offline';index" json:"status"`
	LastHeartbeatAt *time.Time `json:"last_heartbeat_at"`
	CurrentTrackID  *uint      `json:"current_track_id"`
}

// PlayerSession tracks what a store's player is doing right now.
// There is at most one row per store, upserted on every heartbeat
// that carries a track.
type PlayerSession struct {
	StoreID   string    `gorm:"primaryKey;size:36" json:"store_id"`
	TrackID   uint      `json:"track_id"`
	Status    string    `gorm:"default:'stopped'" json:"status"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
