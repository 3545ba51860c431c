package models

import (
	"time"

	"gorm.io/gorm"
)

// Track represents an audio file stored in the audio bucket
type Track struct {
	gorm.Model

	// Core Metadata
	Key    string `gorm:"uniqueIndex;not null" json:"key"` // The storage filepath (audio/...)
	Title  string `gorm:"index" json:"title"`
	Artist string `gorm:"index" json:"artist"`
	Album  string `json:"album"`
	Genre  string `gorm:"index" json:"genre"`
	Year   string `json:"year"`

	// Tech Details
	Duration float64 `json:"duration"` // In seconds
	Bitrate  int     `json:"bitrate"`
	Format   string  `json:"format"` // mp3, flac, etc.
	FileSize int64   `json:"file_size"`

	// Broadcast Logic
	PlayCount  int        `gorm:"default:0" json:"play_count"`
	LastPlayed *time.Time `gorm:"index" json:"last_played"`
}
