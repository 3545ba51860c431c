package models

import (
	"time"

	"gorm.io/datatypes"
)

// RelationshipKind classifies why two playlists are linked
type RelationshipKind string

const (
	RelationSimilar       RelationshipKind = "similar"
	RelationInspired      RelationshipKind = "inspired"
	RelationStoreSpecific RelationshipKind = "store_specific"
	RelationAutoGenerated RelationshipKind = "auto_generated"
)

func (k RelationshipKind) Valid() bool {
	switch k {
	case RelationSimilar, RelationInspired, RelationStoreSpecific, RelationAutoGenerated:
		return true
	}
	return false
}

// PlaylistRelationship is a directed edge between two playlists.
// At most one row may exist per (source, related) pair; updates and
// deletes address rows by that pair, never by ID.
type PlaylistRelationship struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SourcePlaylistID  uint             `gorm:"uniqueIndex:idx_playlist_pair;not null" json:"source_playlist_id"`
	RelatedPlaylistID uint             `gorm:"uniqueIndex:idx_playlist_pair;not null" json:"related_playlist_id"`
	Kind              RelationshipKind `gorm:"size:32;not null;default:'similar'" json:"kind"`
	Strength          float64          `gorm:"default:0" json:"strength"`
	Metadata          datatypes.JSON   `json:"metadata"`
}
